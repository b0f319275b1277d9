package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv layers the deployment environment variables over the current
// values. Unset or malformed variables leave the existing value in place.
func (c *Config) applyEnv() {
	setString(&c.Buckets.Uploads, "UPLOADS_BUCKET")
	setString(&c.Buckets.Guidance, "GUIDANCE_BUCKET")
	setString(&c.Buckets.ModelAssets, "SMPL_ASSETS_BUCKET")
	setString(&c.Storage.Root, "STORAGE_ROOT")

	setString(&c.Events.BusName, "EVENT_BUS_NAME")
	setString(&c.Events.NATSURL, "NATS_URL")

	setInt(&c.Processing.MaxProcessingTimeSeconds, "MAX_PROCESSING_TIME_SECONDS")
	setInt(&c.Processing.MaxImageSizeMB, "MAX_IMAGE_SIZE_MB")
	setInt(&c.Processing.BatchSize, "BATCH_SIZE")

	setString(&c.Models.ModelDir, "SMPL_MODEL_PATH")
	setString(&c.Models.WeightsDir, "SMPL_WEIGHTS_PATH")
	setString(&c.Models.ROMPConfigPath, "ROMP_CONFIG_PATH")
	setString(&c.Models.SMPLifyConfigPath, "SMPLIFY_X_CONFIG_PATH")

	setString(&c.Paths.WorkDir, "WORK_DIR")
	setString(&c.Paths.APIBind, "API_BIND")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

func setString(target *string, name string) {
	if value, ok := os.LookupEnv(name); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*target = trimmed
		}
	}
}

func setInt(target *int, name string) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return
	}
	*target = parsed
}
