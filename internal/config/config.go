package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	LogDir     string `toml:"log_dir"`
	LedgerPath string `toml:"ledger_path"`
	APIBind    string `toml:"api_bind"`
}

// Buckets names the role-scoped object storage locations.
type Buckets struct {
	Uploads     string `toml:"uploads"`
	Guidance    string `toml:"guidance"`
	ModelAssets string `toml:"model_assets"`
}

// Storage configures the object store backend.
type Storage struct {
	// Root is the base directory for the filesystem-backed object store.
	Root string `toml:"root"`
}

// Events configures outbound event publication and the session request feed.
type Events struct {
	BusName        string `toml:"bus_name"`
	NATSURL        string `toml:"nats_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Processing contains pipeline limits and budgets.
type Processing struct {
	MaxProcessingTimeSeconds int `toml:"max_processing_time_seconds"`
	MaxImageSizeMB           int `toml:"max_image_size_mb"`
	BatchSize                int `toml:"batch_size"`
	StaleWorkspaceHours      int `toml:"stale_workspace_hours"`
}

// Models contains local paths for body-model artifacts and estimator configs.
type Models struct {
	ModelDir          string `toml:"model_dir"`
	WeightsDir        string `toml:"weights_dir"`
	ROMPConfigPath    string `toml:"romp_config_path"`
	SMPLifyConfigPath string `toml:"smplify_config_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root worker configuration.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Buckets    Buckets    `toml:"buckets"`
	Storage    Storage    `toml:"storage"`
	Events     Events     `toml:"events"`
	Processing Processing `toml:"processing"`
	Models     Models     `toml:"models"`
	Logging    Logging    `toml:"logging"`
}

// Load locates, parses, and validates configuration. The returned config has
// all path fields expanded and normalized, with environment overrides applied.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/fitforge/config.toml")
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("fitforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories daemon operation requires.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.WorkDir,
		c.Paths.LogDir,
		c.Models.ModelDir,
		c.Models.WeightsDir,
		filepath.Dir(c.Paths.LedgerPath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MaxImageSizeBytes returns the configured image size limit in bytes.
func (c *Config) MaxImageSizeBytes() int64 {
	return int64(c.Processing.MaxImageSizeMB) * 1024 * 1024
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
