package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"fitforge/internal/config"
	"fitforge/internal/logging"
	"fitforge/internal/pipeline"
	"fitforge/internal/session"
	"fitforge/internal/workspace"
)

// Daemon owns the worker lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	processor *pipeline.Processor
	source    Source
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	stopMu  sync.Mutex
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, processor *pipeline.Processor, source Source, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || processor == nil || source == nil {
		return nil, errors.New("daemon requires config, processor, and source")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := filepath.Join(cfg.Paths.LogDir, "fitforged.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		processor: processor,
		source:    source,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, processor, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the instance lock, sweeps stale workspaces, starts the
// status API, and begins consuming session requests. It returns once the
// loop is running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fitforged instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	maxAge := time.Duration(d.cfg.Processing.StaleWorkspaceHours) * time.Hour
	sweep := workspace.CleanStale(runCtx, d.cfg.Paths.WorkDir, maxAge, d.logger)
	if len(sweep.Removed) > 0 {
		d.logger.Info("stale workspaces removed", logging.Int("count", len(sweep.Removed)))
	}

	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	requests, err := d.source.Start(runCtx)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start request source: %w", err)
	}

	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)
	go d.loop(runCtx, requests)

	d.logger.Info("fitforged started", logging.String("lock", d.lockPath))
	return nil
}

// loop pulls one request at a time. Cancellation is observed only between
// sessions: the in-flight session runs on a detached context so it always
// reaches a terminal outcome.
func (d *Daemon) loop(ctx context.Context, requests <-chan session.Request) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			sessionCtx := context.WithoutCancel(ctx)
			if _, err := d.processor.Process(sessionCtx, req); err != nil {
				d.logger.Error("session ended in failure",
					logging.String(logging.FieldSessionID, req.SessionID),
					logging.Error(err))
			}
		}
	}
}

// Stop cancels the loop, waits for the in-flight session, and releases the
// lock. Safe to call more than once.
func (d *Daemon) Stop() {
	d.stopMu.Lock()
	defer d.stopMu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.done

	if err := d.source.Close(); err != nil {
		d.logger.Warn("request source close failed", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("fitforged stopped")
}

// Running reports whether the daemon loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound status API address, empty when disabled.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
