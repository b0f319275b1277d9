package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"fitforge/internal/config"
	"fitforge/internal/events"
	"fitforge/internal/services"
	"fitforge/internal/session"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	server, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("new nats server: %v", err)
	}

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Events.BusName = "tryon"
	return &cfg
}

func TestPublishCompletionRoundTrip(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	cfg := testConfig()
	sub, err := nc.SubscribeSync(events.CompletionSubject(cfg.Events.BusName))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := events.NewPublisher(cfg, nc)
	completion := events.Completion{
		SessionID: "S1",
		UserID:    "U1",
		GuidanceAssets: events.AssetKeysFromSession(session.UploadedKeys{
			session.AssetDepth:    "depth/S1-1.png",
			session.AssetNormals:  "normals/S1-1.png",
			session.AssetPose:     "pose/S1-1.png",
			session.AssetSegments: "segments/S1-1.png",
			session.AssetPrompt:   "prompt/S1-1.txt",
		}),
		SMPLMetadata: events.MeshMetadata{Gender: "neutral", PoseConfidence: 0.78},
	}
	if err := pub.PublishCompletion(context.Background(), completion); err != nil {
		t.Fatalf("publish completion: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got events.Completion
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SessionID != "S1" || got.UserID != "U1" {
		t.Fatalf("identifiers = %q/%q", got.SessionID, got.UserID)
	}
	if got.ProcessingStage != events.StageComplete {
		t.Fatalf("processing stage = %q", got.ProcessingStage)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp should be stamped")
	}
	for name, key := range map[string]string{
		"depth":    got.GuidanceAssets.DepthMapKey,
		"normals":  got.GuidanceAssets.NormalMapKey,
		"pose":     got.GuidanceAssets.PoseMapKey,
		"segments": got.GuidanceAssets.SegmentationKey,
		"prompt":   got.GuidanceAssets.PromptKey,
	} {
		if key == "" {
			t.Fatalf("missing %s key in event", name)
		}
	}
}

func TestPublishFailureRoundTrip(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	cfg := testConfig()
	sub, err := nc.SubscribeSync(events.FailureSubject(cfg.Events.BusName))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := events.NewPublisher(cfg, nc)
	if err := pub.PublishFailure(context.Background(), events.Failure{
		SessionID: "S1",
		UserID:    "U1",
		Error:     "validation error: intake: validate avatar: image too small",
	}); err != nil {
		t.Fatalf("publish failure: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got events.Failure
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ProcessingStage != events.StageError {
		t.Fatalf("processing stage = %q", got.ProcessingStage)
	}
	if got.Error == "" {
		t.Fatal("error summary missing")
	}
}

func TestPublishAfterDisconnectClassified(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL(), nats.RetryOnFailedConnect(false), nats.MaxReconnects(0))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	cfg := testConfig()
	pub := events.NewPublisher(cfg, nc)

	server.Shutdown()
	server.WaitForShutdown()
	nc.Close()

	err = pub.PublishFailure(context.Background(), events.Failure{SessionID: "S1", UserID: "U1", Error: "x"})
	if err == nil {
		t.Fatal("expected publish error after shutdown")
	}
	if !errors.Is(err, services.ErrEventPublish) {
		t.Fatalf("expected event publish marker, got %v", err)
	}
}

func TestNewPublisherDefaultsToNop(t *testing.T) {
	cfg := config.Default()
	if _, ok := events.NewPublisher(&cfg, nil).(events.NopPublisher); !ok {
		t.Fatal("expected noop publisher without bus configuration")
	}
}
