package uploader_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fitforge/internal/config"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/storage"
	"fitforge/internal/testsupport"
	"fitforge/internal/uploader"
)

func seedState(t *testing.T) *session.State {
	t.Helper()
	workDir := t.TempDir()
	assets := session.AssetSet{}
	for _, kind := range session.AssetKinds() {
		ext := ".png"
		if kind == session.AssetPrompt {
			ext = ".txt"
		}
		path := filepath.Join(workDir, string(kind)+ext)
		if err := os.WriteFile(path, []byte("asset-"+string(kind)), 0o644); err != nil {
			t.Fatalf("write asset fixture: %v", err)
		}
		assets[kind] = path
	}
	return &session.State{
		Request: session.Request{SessionID: "S1", UserID: "U1", AvatarKey: "a.jpg", GarmentKey: "g.jpg"},
		WorkDir: workDir,
		Assets:  assets,
	}
}

func newStore(t *testing.T, cfg *config.Config) *storage.FilesystemStore {
	t.Helper()
	store, err := storage.NewFilesystemStore(cfg.Storage.Root)
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	return store
}

func TestExecuteUploadsEveryAsset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := newStore(t, cfg)
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	handler := uploader.NewHandler(cfg, store, nil).WithClock(func() time.Time { return stamp })
	state := seedState(t)

	if err := handler.Prepare(context.Background(), state); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(state.Keys) != len(session.AssetKinds()) {
		t.Fatalf("uploaded keys = %d, want %d", len(state.Keys), len(session.AssetKinds()))
	}
	for _, kind := range session.AssetKinds() {
		key := state.Keys[kind]
		wantPrefix := fmt.Sprintf("%s/S1-%d", kind, stamp.Unix())
		if !strings.HasPrefix(key, wantPrefix) {
			t.Fatalf("key %q lacks prefix %q", key, wantPrefix)
		}
		local := filepath.Join(t.TempDir(), "fetched")
		if err := store.Get(context.Background(), cfg.Buckets.Guidance, key, local); err != nil {
			t.Fatalf("uploaded object %s unreadable: %v", key, err)
		}
	}

	ct, err := store.ContentType(cfg.Buckets.Guidance, state.Keys[session.AssetPrompt])
	if err != nil {
		t.Fatalf("ContentType: %v", err)
	}
	if ct != "text/plain" {
		t.Fatalf("prompt content type = %q, want text/plain", ct)
	}
	ct, err = store.ContentType(cfg.Buckets.Guidance, state.Keys[session.AssetDepth])
	if err != nil {
		t.Fatalf("ContentType: %v", err)
	}
	if ct != "image/png" {
		t.Fatalf("depth content type = %q, want image/png", ct)
	}
}

func TestObjectKeysUniquePerTimestamp(t *testing.T) {
	a := uploader.ObjectKey(session.AssetDepth, "S1", 100, ".png")
	b := uploader.ObjectKey(session.AssetDepth, "S1", 101, ".png")
	if a == b {
		t.Fatalf("keys should differ across timestamps: %q", a)
	}
	if a != "depth/S1-100.png" {
		t.Fatalf("key format = %q", a)
	}
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, bucket, key, localPath string) error {
	return errors.New("unexpected Get")
}

func (failingStore) Put(ctx context.Context, localPath, bucket, key, contentType string) error {
	return errors.New("bucket unavailable")
}

func TestExecutePutFailureIsUploadError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := uploader.NewHandler(cfg, failingStore{}, nil)
	state := seedState(t)

	err := handler.Execute(context.Background(), state)
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected upload marker, got %v", err)
	}
	if state.Keys != nil {
		t.Fatal("keys must not be recorded on failure")
	}
}

func TestPrepareRequiresFullAssetSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := uploader.NewHandler(cfg, failingStore{}, nil)
	state := seedState(t)
	delete(state.Assets, session.AssetNormals)

	if err := handler.Prepare(context.Background(), state); !errors.Is(err, services.ErrProcessing) {
		t.Fatalf("expected processing marker, got %v", err)
	}
}
