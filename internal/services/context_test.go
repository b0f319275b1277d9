package services_test

import (
	"context"
	"testing"

	"fitforge/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithUserID(ctx, "user-1")
	ctx = services.WithStage(ctx, "intake")
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("session id = %q, %v", id, ok)
	}
	if id, ok := services.UserIDFromContext(ctx); !ok || id != "user-1" {
		t.Fatalf("user id = %q, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "intake" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id = %q, %v", rid, ok)
	}
}

func TestContextEmptyValuesIgnored(t *testing.T) {
	ctx := services.WithSessionID(context.Background(), "")
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("empty session id should not be stored")
	}
	if _, ok := services.StageFromContext(context.Background()); ok {
		t.Fatal("missing stage should report not present")
	}
}
