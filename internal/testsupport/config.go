package testsupport

import (
	"path/filepath"
	"testing"

	"fitforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "ledger", "fitforge.db")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Storage.Root = filepath.Join(base, "objects")
	cfgVal.Models.ModelDir = filepath.Join(base, "models")
	cfgVal.Models.WeightsDir = filepath.Join(base, "weights")
	cfgVal.Models.ROMPConfigPath = filepath.Join(base, "romp.yaml")
	cfgVal.Models.SMPLifyConfigPath = filepath.Join(base, "smplify.yaml")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithBusName enables event publication under the given bus name.
func WithBusName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Events.BusName = name
	}
}

// WithMaxImageSizeMB overrides the input image size limit.
func WithMaxImageSizeMB(mb int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.MaxImageSizeMB = mb
	}
}

// WithProcessingBudget overrides the soft processing-time budget in seconds.
func WithProcessingBudget(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.MaxProcessingTimeSeconds = seconds
	}
}
