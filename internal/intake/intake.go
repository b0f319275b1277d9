// Package intake downloads the session's source images into the workspace and
// validates them before any model work begins. Validation failures are the
// caller's fault and carry the validation marker; transport failures carry
// the download marker.
package intake

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"fitforge/internal/config"
	"fitforge/internal/fileutil"
	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
	"fitforge/internal/storage"
)

// Minimum side length for a usable source image.
const minDimension = 256

var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// Handler fetches and validates the avatar and garment images.
type Handler struct {
	store    storage.ObjectStore
	bucket   string
	maxBytes int64
	logger   *slog.Logger
}

// NewHandler constructs the intake stage over the uploads bucket.
func NewHandler(cfg *config.Config, store storage.ObjectStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		store:    store,
		bucket:   cfg.Buckets.Uploads,
		maxBytes: cfg.MaxImageSizeBytes(),
		logger:   logging.NewComponentLogger(logger, "intake"),
	}
}

func (h *Handler) Prepare(ctx context.Context, state *session.State) error {
	if err := state.Request.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "intake", "prepare", "invalid session request", err)
	}
	if state.WorkDir == "" {
		return services.Wrap(services.ErrProcessing, "intake", "prepare", "session workspace not created", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, state *session.State) error {
	avatarPath := filepath.Join(state.WorkDir, "avatar"+keyExtension(state.Request.AvatarKey))
	garmentPath := filepath.Join(state.WorkDir, "garment"+keyExtension(state.Request.GarmentKey))

	for _, input := range []struct {
		label string
		key   string
		path  string
	}{
		{"avatar", state.Request.AvatarKey, avatarPath},
		{"garment", state.Request.GarmentKey, garmentPath},
	} {
		if err := h.store.Get(ctx, h.bucket, input.key, input.path); err != nil {
			return services.Wrap(services.ErrDownload, "intake", "download",
				fmt.Sprintf("download %s image %s", input.label, input.key), err)
		}
		if err := h.validate(input.label, input.path); err != nil {
			return err
		}
		h.logger.DebugContext(ctx, "input accepted",
			logging.String("input", input.label),
			logging.String("key", input.key))
	}

	state.Inputs = &session.InputImages{
		AvatarPath:  avatarPath,
		GarmentPath: garmentPath,
	}
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.bucket == "" {
		return stage.Unhealthy("intake", "uploads bucket not configured")
	}
	return stage.Healthy("intake")
}

// validate enforces the three acceptance gates in cheap-first order: byte
// size, decodable allow-listed format, and minimum dimensions.
func (h *Handler) validate(label, path string) error {
	size, err := fileutil.FileSize(path)
	if err != nil {
		return services.Wrap(services.ErrDownload, "intake", "stat",
			fmt.Sprintf("stat downloaded %s image", label), err)
	}
	if size > h.maxBytes {
		return services.Wrap(services.ErrValidation, "intake", "validate",
			fmt.Sprintf("%s image is %d bytes, limit is %d", label, size, h.maxBytes), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrDownload, "intake", "open",
			fmt.Sprintf("open downloaded %s image", label), err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return services.Wrap(services.ErrValidation, "intake", "validate",
			fmt.Sprintf("%s image is not a decodable image", label), err)
	}
	if !allowedFormats[format] {
		return services.Wrap(services.ErrValidation, "intake", "validate",
			fmt.Sprintf("%s image format %q is not supported", label, format), nil)
	}
	if cfg.Width < minDimension || cfg.Height < minDimension {
		return services.Wrap(services.ErrValidation, "intake", "validate",
			fmt.Sprintf("%s image is %dx%d, minimum is %dx%d", label, cfg.Width, cfg.Height, minDimension, minDimension), nil)
	}
	return nil
}

// keyExtension preserves the source extension so decoders and operators see
// the expected suffix; unknown or missing extensions fall back to .img.
func keyExtension(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".img"
	}
}
