// Package meshstage fits body-model parameters to the session's pose
// estimate. It acquires the model artifacts through the shared cache before
// every fit; the first session in a process pays the download.
package meshstage

import (
	"context"
	"log/slog"

	"fitforge/internal/bodymodel"
	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
)

// Handler runs the body-mesh fit.
type Handler struct {
	cache  *bodymodel.Cache
	fitter bodymodel.Fitter
	logger *slog.Logger
}

// NewHandler constructs the mesh stage over the shared model cache.
func NewHandler(cache *bodymodel.Cache, fitter bodymodel.Fitter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		cache:  cache,
		fitter: fitter,
		logger: logging.NewComponentLogger(logger, "meshstage"),
	}
}

func (h *Handler) Prepare(ctx context.Context, state *session.State) error {
	if state.Pose == nil {
		return services.Wrap(services.ErrProcessing, "mesh", "prepare", "pose estimate not available", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, state *session.State) error {
	handles, err := h.cache.Acquire(ctx)
	if err != nil {
		return err
	}

	fit, err := h.fitter.Fit(ctx, handles, state.Pose)
	if err != nil {
		return err
	}
	if len(fit.ShapeParams) != session.ShapeParamCount || len(fit.PoseParams) != session.PoseParamCount {
		return services.Wrap(services.ErrProcessing, "mesh", "fit", "fitter violated parameter shape contract", nil)
	}

	state.Mesh = fit
	h.logger.InfoContext(ctx, "mesh fitted",
		logging.String(logging.FieldSessionID, state.Request.SessionID),
		logging.String("gender", string(fit.Gender)),
		logging.Float64("fit_confidence", fit.FitConfidence))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.cache == nil || h.fitter == nil {
		return stage.Unhealthy("mesh", "model cache or fitter not configured")
	}
	return stage.Healthy("mesh")
}
