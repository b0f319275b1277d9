// Package daemon runs the worker's long-lived lifecycle: it enforces
// single-instance execution with a file lock, sweeps stale session
// workspaces on start, serves the status API, and pulls session requests
// from a Source one at a time. Shutdown is graceful between sessions; the
// in-flight session always runs to its terminal outcome.
package daemon
