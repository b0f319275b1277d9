// Package storage abstracts the object store the pipeline reads inputs from
// and writes guidance assets to. The orchestrator and stage handlers depend
// only on the ObjectStore interface; the filesystem implementation backs
// local deployments and tests, with buckets mapped to directories under a
// configured root.
package storage
