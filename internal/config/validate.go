package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the worker cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		problems = append(problems, "paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Storage.Root) == "" {
		problems = append(problems, "storage.root must be set")
	}
	for _, bucket := range []struct {
		name  string
		value string
	}{
		{"buckets.uploads", c.Buckets.Uploads},
		{"buckets.guidance", c.Buckets.Guidance},
		{"buckets.model_assets", c.Buckets.ModelAssets},
	} {
		if bucket.value == "" {
			problems = append(problems, fmt.Sprintf("%s must be set", bucket.name))
		}
	}
	if c.Processing.MaxProcessingTimeSeconds <= 0 {
		problems = append(problems, "processing.max_processing_time_seconds must be positive")
	}
	if c.Processing.MaxImageSizeMB <= 0 {
		problems = append(problems, "processing.max_image_size_mb must be positive")
	}
	if c.Processing.BatchSize < 1 {
		problems = append(problems, "processing.batch_size must be at least 1")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
