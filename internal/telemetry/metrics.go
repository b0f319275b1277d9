package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitforge",
			Subsystem: "pipeline",
			Name:      "sessions_total",
			Help:      "Total number of processed sessions by outcome",
		},
		[]string{"outcome"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitforge",
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Total number of failed sessions by error kind",
		},
		[]string{"error_kind"},
	)

	processingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fitforge",
			Subsystem: "pipeline",
			Name:      "processing_duration_seconds",
			Help:      "End-to-end session processing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	modelsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fitforge",
			Subsystem: "models",
			Name:      "loaded",
			Help:      "Whether the body-model artifacts are resident (1=loaded)",
		},
	)
)

// PrometheusReporter records outcomes into the process-wide registry.
type PrometheusReporter struct{}

// NewPrometheusReporter returns the Prometheus-backed reporter.
func NewPrometheusReporter() *PrometheusReporter {
	return &PrometheusReporter{}
}

func (r *PrometheusReporter) RecordSuccess(_ context.Context, _ string, duration time.Duration) {
	sessionsTotal.WithLabelValues("success").Inc()
	processingDuration.Observe(duration.Seconds())
}

func (r *PrometheusReporter) RecordFailure(_ context.Context, _ string, errorKind string) {
	sessionsTotal.WithLabelValues("failure").Inc()
	if errorKind == "" {
		errorKind = "UnknownError"
	}
	failuresTotal.WithLabelValues(errorKind).Inc()
}

func (r *PrometheusReporter) SetModelsLoaded(loaded bool) {
	if loaded {
		modelsLoaded.Set(1)
	} else {
		modelsLoaded.Set(0)
	}
}
