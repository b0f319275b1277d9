package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeModels(); err != nil {
		return err
	}
	c.normalizeBuckets()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	if c.Storage.Root, err = expandPath(c.Storage.Root); err != nil {
		return fmt.Errorf("storage.root: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeModels() error {
	var err error
	if c.Models.ModelDir, err = expandPath(c.Models.ModelDir); err != nil {
		return fmt.Errorf("models.model_dir: %w", err)
	}
	if c.Models.WeightsDir, err = expandPath(c.Models.WeightsDir); err != nil {
		return fmt.Errorf("models.weights_dir: %w", err)
	}
	if c.Models.ROMPConfigPath, err = expandPath(c.Models.ROMPConfigPath); err != nil {
		return fmt.Errorf("models.romp_config_path: %w", err)
	}
	if c.Models.SMPLifyConfigPath, err = expandPath(c.Models.SMPLifyConfigPath); err != nil {
		return fmt.Errorf("models.smplify_config_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeBuckets() {
	c.Buckets.Uploads = strings.TrimSpace(c.Buckets.Uploads)
	c.Buckets.Guidance = strings.TrimSpace(c.Buckets.Guidance)
	c.Buckets.ModelAssets = strings.TrimSpace(c.Buckets.ModelAssets)
	c.Events.BusName = strings.TrimSpace(c.Events.BusName)
	c.Events.NATSURL = strings.TrimSpace(c.Events.NATSURL)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Events.RequestTimeout <= 0 {
		c.Events.RequestTimeout = defaultEventRequestTimeout
	}
	if c.Processing.StaleWorkspaceHours <= 0 {
		c.Processing.StaleWorkspaceHours = defaultStaleWorkspaceHours
	}
}
