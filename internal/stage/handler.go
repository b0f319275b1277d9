package stage

import (
	"context"

	"fitforge/internal/session"
)

// Handler describes the contract the pipeline orchestrator needs from each
// stage. Prepare runs cheap precondition checks and logging setup; Execute
// performs the work, reading and writing the shared session state.
type Handler interface {
	Prepare(context.Context, *session.State) error
	Execute(context.Context, *session.State) error
	HealthCheck(context.Context) Health
}
