package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"fitforge/internal/bodymodel"
	"fitforge/internal/config"
	"fitforge/internal/daemon"
	"fitforge/internal/events"
	"fitforge/internal/guidance"
	"fitforge/internal/intake"
	"fitforge/internal/ledger"
	"fitforge/internal/logging"
	"fitforge/internal/meshstage"
	"fitforge/internal/pipeline"
	"fitforge/internal/pose"
	"fitforge/internal/posestage"
	"fitforge/internal/stats"
	"fitforge/internal/storage"
	"fitforge/internal/telemetry"
	"fitforge/internal/uploader"
	"fitforge/internal/workspace"
)

// worker bundles the wired processing components for one process.
type worker struct {
	cfg       *config.Config
	logger    *slog.Logger
	processor *pipeline.Processor
	ledger    *ledger.Store
	cache     *bodymodel.Cache
	conn      *nats.Conn
}

// buildWorker wires the full pipeline from configuration. The NATS
// connection is optional: without a bus name the worker runs with event
// publication disabled.
func buildWorker(cfg *config.Config, logger *slog.Logger) (*worker, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := storage.NewFilesystemStore(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}

	ledgerStore, err := ledger.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session ledger: %w", err)
	}

	var conn *nats.Conn
	if strings.TrimSpace(cfg.Events.BusName) != "" {
		conn, err = nats.Connect(cfg.Events.NATSURL,
			nats.Name("fitforged"),
			nats.Timeout(10*time.Second),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			_ = ledgerStore.Close()
			return nil, fmt.Errorf("connect to nats %s: %w", cfg.Events.NATSURL, err)
		}
	}

	cache := bodymodel.NewCache(cfg, store, logger)
	reporter := telemetry.NewPrometheusReporter()

	stages := []pipeline.Stage{
		{Name: "intake", Handler: intake.NewHandler(cfg, store, logger)},
		{Name: "pose", Handler: posestage.NewHandler(pose.NewHeuristicEstimator(logger), logger)},
		{Name: "mesh", Handler: meshstage.NewHandler(cache, bodymodel.NewParametricFitter(logger), logger)},
		{Name: "guidance", Handler: guidance.NewHandler(logger)},
		{Name: "upload", Handler: uploader.NewHandler(cfg, store, logger)},
	}

	manager, err := workspace.NewManager(cfg.Paths.WorkDir)
	if err != nil {
		closeWorkerParts(conn, ledgerStore)
		return nil, err
	}

	processor, err := pipeline.New(pipeline.Deps{
		Config:       cfg,
		Workspaces:   manager,
		Stages:       stages,
		Publisher:    events.NewPublisher(cfg, conn),
		Reporter:     reporter,
		Stats:        stats.New(),
		Ledger:       ledgerStore,
		Logger:       logger,
		ModelsLoaded: cache.Loaded,
	})
	if err != nil {
		closeWorkerParts(conn, ledgerStore)
		return nil, err
	}

	return &worker{
		cfg:       cfg,
		logger:    logger,
		processor: processor,
		ledger:    ledgerStore,
		cache:     cache,
		conn:      conn,
	}, nil
}

// source returns the daemon request feed: NATS when a bus is configured,
// otherwise an empty channel source so a bus-less daemon still serves its
// status API.
func (w *worker) source() (daemon.Source, error) {
	if w.conn != nil {
		return daemon.NewNATSSource(w.cfg, w.conn, w.logger)
	}
	return daemon.NewChannelSource(0), nil
}

func (w *worker) close() {
	closeWorkerParts(w.conn, w.ledger)
}

func closeWorkerParts(conn *nats.Conn, ledgerStore *ledger.Store) {
	if conn != nil {
		conn.Close()
	}
	if ledgerStore != nil {
		_ = ledgerStore.Close()
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg)
}
