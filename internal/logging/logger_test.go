package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitforge/internal/config"
	"fitforge/internal/logging"
	"fitforge/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	logger.Info("worker ready", logging.String("component", "test"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "fitforge.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "worker ready") {
		t.Fatalf("log file missing message: %q", string(data))
	}
}

func TestWithContextCarriesSessionFields(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}

	ctx := services.WithSessionID(context.Background(), "sess-42")
	ctx = services.WithStage(ctx, "intake")
	logging.WithContext(ctx, logger).Info("stage started")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "fitforge.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"session_id":"sess-42"`) {
		t.Fatalf("missing session id in %q", line)
	}
	if !strings.Contains(line, `"stage":"intake"`) {
		t.Fatalf("missing stage in %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
