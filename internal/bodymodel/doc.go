// Package bodymodel manages the parametric body-model artifacts and fits a
// body mesh to a pose estimate. The three model files (female, male, neutral)
// are fetched from object storage once per process and reused by every
// subsequent session; a failed fetch is fatal to the requesting session but
// leaves the cache ready to retry.
package bodymodel
