package telemetry

import (
	"context"
	"time"
)

// Reporter is the outcome-recording surface the orchestrator drives. All
// methods are best-effort and must never block a session.
type Reporter interface {
	RecordSuccess(ctx context.Context, sessionID string, duration time.Duration)
	RecordFailure(ctx context.Context, sessionID string, errorKind string)
	SetModelsLoaded(loaded bool)
}

// NopReporter discards all telemetry.
type NopReporter struct{}

func (NopReporter) RecordSuccess(context.Context, string, time.Duration) {}
func (NopReporter) RecordFailure(context.Context, string, string)        {}
func (NopReporter) SetModelsLoaded(bool)                                 {}
