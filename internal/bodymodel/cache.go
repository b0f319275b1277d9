package bodymodel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fitforge/internal/config"
	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/storage"
)

// Model artifact filenames as published to the model-assets bucket.
const (
	femaleModelFile  = "basicModel_f_lbs_10_207_0_v1.0.0.pkl"
	maleModelFile    = "basicModel_m_lbs_10_207_0_v1.0.0.pkl"
	neutralModelFile = "basicModel_neutral_lbs_10_207_0_v1.0.0.pkl"
)

// Handles holds the local paths of the three gendered model artifacts.
type Handles struct {
	Female  string
	Male    string
	Neutral string
}

// ForGender returns the artifact path for the given body-model gender.
func (h Handles) ForGender(g session.Gender) string {
	switch g {
	case session.GenderFemale:
		return h.Female
	case session.GenderMale:
		return h.Male
	default:
		return h.Neutral
	}
}

// Cache downloads model artifacts on first use and hands out local paths.
// Acquire is safe for concurrent use; only one download pass ever runs.
type Cache struct {
	store    storage.ObjectStore
	bucket   string
	modelDir string
	logger   *slog.Logger

	mu      sync.Mutex
	loaded  bool
	handles Handles
}

// NewCache returns a cache that stores artifacts under cfg's model directory.
func NewCache(cfg *config.Config, store storage.ObjectStore, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		store:    store,
		bucket:   cfg.Buckets.ModelAssets,
		modelDir: cfg.Models.ModelDir,
		logger:   logging.NewComponentLogger(logger, "bodymodel"),
	}
}

// Acquire ensures all three model artifacts are present locally and returns
// their paths. On failure no artifacts are considered loaded and the next
// call performs the fetch again.
func (c *Cache) Acquire(ctx context.Context) (Handles, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.handles, nil
	}

	handles := Handles{
		Female:  filepath.Join(c.modelDir, femaleModelFile),
		Male:    filepath.Join(c.modelDir, maleModelFile),
		Neutral: filepath.Join(c.modelDir, neutralModelFile),
	}

	if err := os.MkdirAll(c.modelDir, 0o755); err != nil {
		return Handles{}, services.Wrap(services.ErrModelLoad, "bodymodel", "prepare", "create model directory", err)
	}

	for _, artifact := range []struct {
		key  string
		path string
	}{
		{femaleModelFile, handles.Female},
		{maleModelFile, handles.Male},
		{neutralModelFile, handles.Neutral},
	} {
		if err := c.ensureArtifact(ctx, artifact.key, artifact.path); err != nil {
			return Handles{}, err
		}
	}

	c.handles = handles
	c.loaded = true
	c.logger.InfoContext(ctx, "body models ready", logging.String("model_dir", c.modelDir))
	return handles, nil
}

// Loaded reports whether a full artifact set has been acquired.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Cache) ensureArtifact(ctx context.Context, key, path string) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}
	c.logger.InfoContext(ctx, "fetching body model", logging.String("key", key))
	if err := c.store.Get(ctx, c.bucket, key, path); err != nil {
		return services.Wrap(services.ErrModelLoad, "bodymodel", "fetch",
			fmt.Sprintf("fetch model artifact %s", key), err)
	}
	return nil
}
