// Package stage defines the handler contract shared by the five pipeline
// stages and the health record the orchestrator aggregates from them.
package stage
