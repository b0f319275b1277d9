package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fitforge/internal/config"
	"fitforge/internal/events"
	"fitforge/internal/ledger"
	"fitforge/internal/logging"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/stage"
	"fitforge/internal/stats"
	"fitforge/internal/telemetry"
	"fitforge/internal/workspace"
)

// Stage pairs a handler with the name used in logs and error context.
type Stage struct {
	Name    string
	Handler stage.Handler
}

// Deps carries everything the processor composes. Config, Workspaces, and
// Stages are required; the rest default to no-ops.
type Deps struct {
	Config     *config.Config
	Workspaces *workspace.Manager
	Stages     []Stage

	Publisher events.Publisher
	Reporter  telemetry.Reporter
	Stats     *stats.Stats
	Ledger    *ledger.Store
	Logger    *slog.Logger

	// ModelsLoaded feeds the health snapshot; typically Cache.Loaded.
	ModelsLoaded func() bool
}

// Processor runs sessions one at a time through the stage sequence.
type Processor struct {
	cfg        *config.Config
	workspaces *workspace.Manager
	stages     []Stage
	publisher  events.Publisher
	reporter   telemetry.Reporter
	stats      *stats.Stats
	ledger     *ledger.Store
	logger     *slog.Logger

	modelsLoaded func() bool
	startedAt    time.Time
}

// New validates deps and constructs a processor.
func New(deps Deps) (*Processor, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	if deps.Workspaces == nil {
		return nil, fmt.Errorf("pipeline: workspace manager is required")
	}
	if len(deps.Stages) == 0 {
		return nil, fmt.Errorf("pipeline: at least one stage is required")
	}
	for _, s := range deps.Stages {
		if s.Name == "" || s.Handler == nil {
			return nil, fmt.Errorf("pipeline: stage with missing name or handler")
		}
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = telemetry.NopReporter{}
	}
	counters := deps.Stats
	if counters == nil {
		counters = stats.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	modelsLoaded := deps.ModelsLoaded
	if modelsLoaded == nil {
		modelsLoaded = func() bool { return false }
	}

	return &Processor{
		cfg:          deps.Config,
		workspaces:   deps.Workspaces,
		stages:       deps.Stages,
		publisher:    publisher,
		reporter:     reporter,
		stats:        counters,
		ledger:       deps.Ledger,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		modelsLoaded: modelsLoaded,
		startedAt:    time.Now(),
	}, nil
}

// Process runs one session to its terminal outcome. The returned error is
// classified by the services sentinels; callers decide redelivery from
// services.CallerFault.
func (p *Processor) Process(ctx context.Context, req session.Request) (*session.Result, error) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithSessionID(ctx, req.SessionID)
	ctx = services.WithUserID(ctx, req.UserID)
	logger := logging.WithContext(ctx, p.logger)

	started := time.Now()
	state := &session.State{Request: req, StartedAt: started}

	if err := req.Validate(); err != nil {
		wrapped := services.Wrap(services.ErrValidation, "pipeline", "accept", "invalid session request", err)
		return nil, p.fail(ctx, logger, state, started, wrapped)
	}

	ws, err := p.workspaces.Create(req.SessionID)
	if err != nil {
		wrapped := services.Wrap(services.ErrProcessing, "pipeline", "workspace", "create session workspace", err)
		return nil, p.fail(ctx, logger, state, started, wrapped)
	}
	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			logger.Warn("workspace cleanup failed", logging.Error(cleanupErr))
		}
	}()
	state.WorkDir = ws.Dir()

	logger.Info("session started")
	for _, st := range p.stages {
		stageCtx := services.WithStage(ctx, st.Name)
		stageLogger := logging.WithContext(stageCtx, p.logger)

		if err := st.Handler.Prepare(stageCtx, state); err != nil {
			stageLogger.Error("stage preparation failed", logging.Error(err))
			return nil, p.fail(ctx, logger, state, started, err)
		}
		stageStarted := time.Now()
		if err := st.Handler.Execute(stageCtx, state); err != nil {
			stageLogger.Error("stage failed", logging.Error(err))
			return nil, p.fail(ctx, logger, state, started, err)
		}
		stageLogger.Debug("stage complete", logging.Duration("elapsed", time.Since(stageStarted)))
	}

	duration := time.Since(started)
	if budget := p.budget(); budget > 0 && duration > budget {
		logger.Warn("session exceeded processing budget",
			logging.String(logging.FieldAlert, "slow_session"),
			logging.Duration("elapsed", duration),
			logging.Duration("budget", budget))
	}

	completion := events.Completion{
		SessionID:      req.SessionID,
		UserID:         req.UserID,
		GuidanceAssets: events.AssetKeysFromSession(state.Keys),
		SMPLMetadata:   events.MeshMetadataFromFit(state.Mesh),
	}
	if err := p.publisher.PublishCompletion(ctx, completion); err != nil {
		// A result nobody hears about is not a success.
		return nil, p.fail(ctx, logger, state, started, err)
	}

	p.stats.RecordSuccess()
	p.reporter.RecordSuccess(ctx, req.SessionID, duration)
	p.reporter.SetModelsLoaded(p.modelsLoaded())
	p.record(ctx, logger, ledger.Entry{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Outcome:   session.StatusSuccess,
		Duration:  duration,
		AssetKeys: state.Keys,
	})

	logger.Info("session complete", logging.Duration("elapsed", duration))
	return &session.Result{
		Status:         session.StatusSuccess,
		SessionID:      req.SessionID,
		ProcessingTime: duration,
		AssetKeys:      state.Keys,
		Mesh:           state.Mesh,
	}, nil
}

// fail runs the failure path exactly once per session: telemetry, a
// best-effort failure event, and the ledger row. It returns the original
// error for the caller.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, state *session.State, started time.Time, cause error) error {
	duration := time.Since(started)
	kind := services.Classify(cause)

	p.stats.RecordFailure()
	p.reporter.RecordFailure(ctx, state.Request.SessionID, string(kind))
	p.reporter.SetModelsLoaded(p.modelsLoaded())

	failure := events.Failure{
		SessionID: state.Request.SessionID,
		UserID:    state.Request.UserID,
		Error:     fmt.Sprintf("%s: %v", kind, cause),
	}
	if pubErr := p.publisher.PublishFailure(ctx, failure); pubErr != nil {
		logger.Error("failure event publish failed", logging.Error(pubErr))
	}

	p.record(ctx, logger, ledger.Entry{
		SessionID: state.Request.SessionID,
		UserID:    state.Request.UserID,
		Outcome:   session.StatusFailure,
		ErrorKind: kind,
		Duration:  duration,
	})

	logger.Error("session failed",
		logging.String(logging.FieldErrorKind, string(kind)),
		logging.Duration("elapsed", duration),
		logging.Error(cause))
	return cause
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, entry ledger.Entry) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		logger.Warn("ledger record failed", logging.Error(err))
	}
}

func (p *Processor) budget() time.Duration {
	return time.Duration(p.cfg.Processing.MaxProcessingTimeSeconds) * time.Second
}
