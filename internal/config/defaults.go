package config

const (
	defaultWorkDir             = "~/.local/share/fitforge/work"
	defaultLogDir              = "~/.local/share/fitforge/logs"
	defaultLedgerPath          = "~/.local/share/fitforge/ledger.db"
	defaultAPIBind             = "127.0.0.1:7612"
	defaultStorageRoot         = "~/.local/share/fitforge/storage"
	defaultUploadsBucket       = "uploads"
	defaultGuidanceBucket      = "guidance"
	defaultModelAssetsBucket   = "smpl-assets"
	defaultEventRequestTimeout = 10
	defaultMaxProcessingTime   = 600
	defaultMaxImageSizeMB      = 50
	defaultBatchSize           = 1
	defaultStaleWorkspaceHours = 24
	defaultModelDir            = "~/.local/share/fitforge/models/smpl"
	defaultWeightsDir          = "~/.local/share/fitforge/weights"
	defaultROMPConfigPath      = "~/.config/fitforge/romp.yaml"
	defaultSMPLifyConfigPath   = "~/.config/fitforge/smplify_x.yaml"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
			APIBind:    defaultAPIBind,
		},
		Buckets: Buckets{
			Uploads:     defaultUploadsBucket,
			Guidance:    defaultGuidanceBucket,
			ModelAssets: defaultModelAssetsBucket,
		},
		Storage: Storage{
			Root: defaultStorageRoot,
		},
		Events: Events{
			RequestTimeout: defaultEventRequestTimeout,
		},
		Processing: Processing{
			MaxProcessingTimeSeconds: defaultMaxProcessingTime,
			MaxImageSizeMB:           defaultMaxImageSizeMB,
			BatchSize:                defaultBatchSize,
			StaleWorkspaceHours:      defaultStaleWorkspaceHours,
		},
		Models: Models{
			ModelDir:          defaultModelDir,
			WeightsDir:        defaultWeightsDir,
			ROMPConfigPath:    defaultROMPConfigPath,
			SMPLifyConfigPath: defaultSMPLifyConfigPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
