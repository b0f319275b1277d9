// Package session defines the data model a single try-on session carries
// through the pipeline: the inbound request, the intermediate artifacts each
// stage produces, and the terminal result. The State value is mutated in
// place by the stage handlers; everything else is immutable once created.
package session
