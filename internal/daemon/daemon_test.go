package daemon_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"fitforge/internal/config"
	"fitforge/internal/daemon"
	"fitforge/internal/pipeline"
	"fitforge/internal/session"
	"fitforge/internal/stage"
	"fitforge/internal/stats"
	"fitforge/internal/testsupport"
	"fitforge/internal/workspace"
)

// gateStage blocks Execute until released, so tests can hold a session
// in flight.
type gateStage struct {
	started  chan string
	release  chan struct{}
	executed chan string
}

func newGateStage() *gateStage {
	return &gateStage{
		started:  make(chan string, 8),
		release:  make(chan struct{}),
		executed: make(chan string, 8),
	}
}

func (g *gateStage) Prepare(ctx context.Context, state *session.State) error { return nil }

func (g *gateStage) Execute(ctx context.Context, state *session.State) error {
	g.started <- state.Request.SessionID
	<-g.release
	g.executed <- state.Request.SessionID
	return nil
}

func (g *gateStage) HealthCheck(ctx context.Context) stage.Health { return stage.Healthy("gate") }

type passStage struct{}

func (passStage) Prepare(ctx context.Context, state *session.State) error { return nil }
func (passStage) Execute(ctx context.Context, state *session.State) error { return nil }
func (passStage) HealthCheck(ctx context.Context) stage.Health            { return stage.Healthy("pass") }

func newProcessor(t *testing.T, cfg *config.Config, counters *stats.Stats, handler stage.Handler) *pipeline.Processor {
	t.Helper()
	manager, err := workspace.NewManager(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("workspace.NewManager: %v", err)
	}
	processor, err := pipeline.New(pipeline.Deps{
		Config:     cfg,
		Workspaces: manager,
		Stages:     []pipeline.Stage{{Name: "only", Handler: handler}},
		Stats:      counters,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return processor
}

func request(id string) session.Request {
	return session.Request{SessionID: id, UserID: "U1", AvatarKey: "a.jpg", GarmentKey: "g.jpg"}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDaemonProcessesSubmittedRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	counters := stats.New()
	source := daemon.NewChannelSource(4)
	d, err := daemon.New(cfg, newProcessor(t, cfg, counters, passStage{}), source, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	source.Submit(request("S1"))
	source.Submit(request("S2"))

	waitFor(t, "two processed sessions", func() bool {
		return counters.Snapshot().ProcessedCount == 2
	})
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, newProcessor(t, cfg, stats.New(), passStage{}), daemon.NewChannelSource(1), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, newProcessor(t, cfg, stats.New(), passStage{}), daemon.NewChannelSource(1), nil)
	if err != nil {
		t.Fatalf("daemon.New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must not acquire the lock")
	}
}

func TestDaemonInFlightSessionSurvivesShutdown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	counters := stats.New()
	gate := newGateStage()
	source := daemon.NewChannelSource(1)
	d, err := daemon.New(cfg, newProcessor(t, cfg, counters, gate), source, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	source.Submit(request("S1"))
	<-gate.started

	// Cancel while the session is mid-stage, then let it finish.
	cancel()
	close(gate.release)

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case id := <-gate.executed:
		if id != "S1" {
			t.Fatalf("executed session = %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight session did not complete after cancellation")
	}

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	if counters.Snapshot().ProcessedCount != 1 {
		t.Fatalf("processed = %d, want the in-flight session counted", counters.Snapshot().ProcessedCount)
	}
	if d.Running() {
		t.Fatal("daemon still reports running after Stop")
	}
}

func TestDaemonServesHealthAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	counters := stats.New()
	source := daemon.NewChannelSource(1)
	d, err := daemon.New(cfg, newProcessor(t, cfg, counters, passStage{}), source, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("api address empty")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/api/health", addr))
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Stages []struct {
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
		} `json:"stages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" || len(health.Stages) != 1 {
		t.Fatalf("health payload = %+v", health)
	}

	statsResp, err := http.Get(fmt.Sprintf("http://%s/api/stats", addr))
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer statsResp.Body.Close()
	if statsResp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", statsResp.StatusCode)
	}

	metricsResp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer metricsResp.Body.Close()
	if metricsResp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", metricsResp.StatusCode)
	}
}
