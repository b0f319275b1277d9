// Package posestage runs pose estimation over the validated avatar image.
package posestage

import (
	"context"
	"log/slog"

	"fitforge/internal/logging"
	"fitforge/internal/pose"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
)

// Handler delegates to a pose.Estimator and records the estimate on the
// session state. An estimate without a detected person is still a success.
type Handler struct {
	estimator pose.Estimator
	logger    *slog.Logger
}

// NewHandler constructs the pose stage.
func NewHandler(estimator pose.Estimator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		estimator: estimator,
		logger:    logging.NewComponentLogger(logger, "posestage"),
	}
}

func (h *Handler) Prepare(ctx context.Context, state *session.State) error {
	if state.Inputs == nil || state.Inputs.AvatarPath == "" {
		return services.Wrap(services.ErrProcessing, "pose", "prepare", "avatar image not staged", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, state *session.State) error {
	estimate, err := h.estimator.Estimate(ctx, state.Inputs.AvatarPath)
	if err != nil {
		return err
	}
	if len(estimate.Joints3D) != session.JointCount3D || len(estimate.Keypoints2D) != session.KeypointCount2D {
		return services.Wrap(services.ErrProcessing, "pose", "estimate", "estimator violated output shape contract", nil)
	}

	state.Pose = estimate
	if !estimate.PersonDetected {
		h.logger.WarnContext(ctx, "no person detected in avatar image",
			logging.String(logging.FieldSessionID, state.Request.SessionID))
	} else {
		h.logger.InfoContext(ctx, "pose estimated",
			logging.String(logging.FieldSessionID, state.Request.SessionID),
			logging.Float64("confidence", estimate.Confidence))
	}
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.estimator == nil {
		return stage.Unhealthy("pose", "estimator not configured")
	}
	return stage.Healthy("pose")
}
