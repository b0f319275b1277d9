// Package guidance renders the conditioning assets the try-on generator
// consumes: a depth map, a surface-normal map, a skeleton pose map, a body
// segmentation map, and a text prompt. All four images share the avatar's
// dimensions so they align pixel-for-pixel with the source photo.
package guidance

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
)

// Handler renders the guidance asset set into the session workspace.
type Handler struct {
	logger *slog.Logger
}

// NewHandler constructs the guidance stage.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{logger: logging.NewComponentLogger(logger, "guidance")}
}

func (h *Handler) Prepare(ctx context.Context, state *session.State) error {
	if state.Pose == nil {
		return services.Wrap(services.ErrProcessing, "guidance", "prepare", "pose estimate not available", nil)
	}
	if state.Mesh == nil {
		return services.Wrap(services.ErrProcessing, "guidance", "prepare", "mesh fit not available", nil)
	}
	if state.Inputs == nil {
		return services.Wrap(services.ErrProcessing, "guidance", "prepare", "input images not staged", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, state *session.State) error {
	width, height, err := imageDimensions(state.Inputs.AvatarPath)
	if err != nil {
		return services.Wrap(services.ErrProcessing, "guidance", "measure", "read avatar dimensions", err)
	}

	assets := session.AssetSet{}
	renderers := []struct {
		kind   session.AssetKind
		file   string
		render func(width, height int, state *session.State) image.Image
	}{
		{session.AssetDepth, "depth.png", renderDepthMap},
		{session.AssetNormals, "normals.png", renderNormalMap},
		{session.AssetPose, "pose.png", renderPoseMap},
		{session.AssetSegments, "segments.png", renderSegmentMap},
	}
	for _, r := range renderers {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrProcessing, "guidance", "render", "rendering canceled", err)
		}
		path := filepath.Join(state.WorkDir, r.file)
		if err := imaging.Save(r.render(width, height, state), path); err != nil {
			return services.Wrap(services.ErrProcessing, "guidance", "render",
				fmt.Sprintf("write %s map", r.kind), err)
		}
		assets[r.kind] = path
	}

	promptPath := filepath.Join(state.WorkDir, "prompt.txt")
	if err := os.WriteFile(promptPath, []byte(buildPrompt(state.Mesh)), 0o644); err != nil {
		return services.Wrap(services.ErrProcessing, "guidance", "render", "write prompt", err)
	}
	assets[session.AssetPrompt] = promptPath

	state.Assets = assets
	h.logger.InfoContext(ctx, "guidance assets rendered",
		logging.String(logging.FieldSessionID, state.Request.SessionID),
		logging.Int("asset_count", len(assets)))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("guidance")
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
