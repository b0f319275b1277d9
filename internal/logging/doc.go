// Package logging provides slog construction and the canonical structured
// field vocabulary for the worker.
//
// Two output formats are supported: a human-oriented console format (colored
// when attached to a terminal) and JSON for container log collection. Context
// helpers lift session, stage, and correlation identifiers stamped by
// internal/services into log attributes so every record emitted during a
// session carries the same identifiers.
package logging
