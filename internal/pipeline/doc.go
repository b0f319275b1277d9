// Package pipeline orchestrates a session through the fixed stage order:
// intake, pose estimation, mesh fitting, guidance rendering, upload. Each
// session gets exactly one attempt. Every exit path removes the session
// workspace and emits exactly one terminal signal: a completion event on
// success or a best-effort failure event otherwise, never both.
package pipeline
