package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitforge/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Storage.Root = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load with absent file: %v", err)
	}
	if cfg.Processing.MaxImageSizeMB != 50 {
		t.Fatalf("expected default image limit, got %d", cfg.Processing.MaxImageSizeMB)
	}
	if cfg.Buckets.Uploads == "" || cfg.Buckets.Guidance == "" || cfg.Buckets.ModelAssets == "" {
		t.Fatalf("expected default buckets, got %+v", cfg.Buckets)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitforge.toml")
	content := `
[buckets]
uploads = "tryon-uploads"
guidance = "tryon-guidance"

[processing]
max_image_size_mb = 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Buckets.Uploads != "tryon-uploads" {
		t.Fatalf("uploads bucket = %q", cfg.Buckets.Uploads)
	}
	if cfg.Processing.MaxImageSizeMB != 25 {
		t.Fatalf("max image size = %d", cfg.Processing.MaxImageSizeMB)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("UPLOADS_BUCKET", "env-uploads")
	t.Setenv("MAX_IMAGE_SIZE_MB", "12")
	t.Setenv("MAX_PROCESSING_TIME_SECONDS", "90")
	t.Setenv("SMPL_MODEL_PATH", filepath.Join(t.TempDir(), "models"))
	t.Setenv("BATCH_SIZE", "not-a-number")

	cfg, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Buckets.Uploads != "env-uploads" {
		t.Fatalf("uploads bucket = %q, want env override", cfg.Buckets.Uploads)
	}
	if cfg.Processing.MaxImageSizeMB != 12 {
		t.Fatalf("max image size = %d, want 12", cfg.Processing.MaxImageSizeMB)
	}
	if cfg.Processing.MaxProcessingTimeSeconds != 90 {
		t.Fatalf("max processing time = %d, want 90", cfg.Processing.MaxProcessingTimeSeconds)
	}
	if cfg.Processing.BatchSize != 1 {
		t.Fatalf("malformed BATCH_SIZE should keep default, got %d", cfg.Processing.BatchSize)
	}
}

func TestLoadCoercesNonPositiveStaleHours(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitforge.toml")
	content := `
[processing]
stale_workspace_hours = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Processing.StaleWorkspaceHours != 24 {
		t.Fatalf("stale hours = %d, want default 24 for non-positive input", cfg.Processing.StaleWorkspaceHours)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Storage.Root = t.TempDir()
	cfg.Buckets.Guidance = ""
	cfg.Processing.MaxImageSizeMB = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, fragment := range []string{"buckets.guidance", "max_image_size_mb", "logging.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestMaxImageSizeBytes(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.MaxImageSizeMB = 2
	if got := cfg.MaxImageSizeBytes(); got != 2*1024*1024 {
		t.Fatalf("MaxImageSizeBytes = %d", got)
	}
}
