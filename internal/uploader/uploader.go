// Package uploader publishes the rendered guidance assets to the guidance
// bucket. Keys are namespaced by asset kind and timestamped so repeated runs
// for the same session never collide.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fitforge/internal/config"
	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
	"fitforge/internal/storage"
)

// Handler uploads every asset in the session's asset set.
type Handler struct {
	store  storage.ObjectStore
	bucket string
	logger *slog.Logger

	// now is injectable so tests can pin the key timestamp.
	now func() time.Time
}

// NewHandler constructs the upload stage over the guidance bucket.
func NewHandler(cfg *config.Config, store storage.ObjectStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		store:  store,
		bucket: cfg.Buckets.Guidance,
		logger: logging.NewComponentLogger(logger, "uploader"),
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source. Test hook.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) Prepare(ctx context.Context, state *session.State) error {
	if len(state.Assets) == 0 {
		return services.Wrap(services.ErrProcessing, "upload", "prepare", "no guidance assets to upload", nil)
	}
	for _, kind := range session.AssetKinds() {
		if _, ok := state.Assets[kind]; !ok {
			return services.Wrap(services.ErrProcessing, "upload", "prepare",
				fmt.Sprintf("guidance asset %s missing", kind), nil)
		}
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, state *session.State) error {
	stamp := h.now().Unix()
	keys := session.UploadedKeys{}

	for _, kind := range session.AssetKinds() {
		local := state.Assets[kind]
		key := ObjectKey(kind, state.Request.SessionID, stamp, filepath.Ext(local))
		if err := h.store.Put(ctx, local, h.bucket, key, contentTypeFor(local)); err != nil {
			return services.Wrap(services.ErrUpload, "upload", "put",
				fmt.Sprintf("upload %s asset", kind), err)
		}
		keys[kind] = key
	}

	state.Keys = keys
	h.logger.InfoContext(ctx, "guidance assets uploaded",
		logging.String(logging.FieldSessionID, state.Request.SessionID),
		logging.Int("asset_count", len(keys)))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.bucket == "" {
		return stage.Unhealthy("upload", "guidance bucket not configured")
	}
	return stage.Healthy("upload")
}

// ObjectKey builds the storage key for one asset:
// {kind}/{sessionID}-{unixTimestamp}{ext}.
func ObjectKey(kind session.AssetKind, sessionID string, stamp int64, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s-%d%s", kind, sessionID, stamp, ext)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
