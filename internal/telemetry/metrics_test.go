package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSuccessIncrementsCounter(t *testing.T) {
	r := NewPrometheusReporter()
	before := testutil.ToFloat64(sessionsTotal.WithLabelValues("success"))

	r.RecordSuccess(context.Background(), "sess-1", 2*time.Second)

	after := testutil.ToFloat64(sessionsTotal.WithLabelValues("success"))
	if after != before+1 {
		t.Fatalf("success counter = %v, want %v", after, before+1)
	}
}

func TestRecordFailureTagsErrorKind(t *testing.T) {
	r := NewPrometheusReporter()
	before := testutil.ToFloat64(failuresTotal.WithLabelValues("UploadError"))

	r.RecordFailure(context.Background(), "sess-1", "UploadError")

	after := testutil.ToFloat64(failuresTotal.WithLabelValues("UploadError"))
	if after != before+1 {
		t.Fatalf("failure counter = %v, want %v", after, before+1)
	}
}

func TestRecordFailureEmptyKindFallsBack(t *testing.T) {
	r := NewPrometheusReporter()
	before := testutil.ToFloat64(failuresTotal.WithLabelValues("UnknownError"))

	r.RecordFailure(context.Background(), "sess-1", "")

	after := testutil.ToFloat64(failuresTotal.WithLabelValues("UnknownError"))
	if after != before+1 {
		t.Fatalf("unknown-kind counter = %v, want %v", after, before+1)
	}
}

func TestSetModelsLoaded(t *testing.T) {
	r := NewPrometheusReporter()
	r.SetModelsLoaded(true)
	if got := testutil.ToFloat64(modelsLoaded); got != 1 {
		t.Fatalf("models loaded gauge = %v, want 1", got)
	}
	r.SetModelsLoaded(false)
	if got := testutil.ToFloat64(modelsLoaded); got != 0 {
		t.Fatalf("models loaded gauge = %v, want 0", got)
	}
}
