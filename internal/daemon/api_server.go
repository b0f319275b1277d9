package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitforge/internal/config"
	"fitforge/internal/logging"
	"fitforge/internal/pipeline"
)

// apiServer serves the read-only status surface: health, stats, metrics.
type apiServer struct {
	bind      string
	logger    *slog.Logger
	processor *pipeline.Processor

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, processor *pipeline.Processor, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	srv := &apiServer{
		bind:      bind,
		logger:    logging.NewComponentLogger(logger, "api"),
		processor: processor,
	}
	if bind == "" {
		return srv, nil
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", srv.handleHealth)
	r.Get("/api/stats", srv.handleStats)
	r.Handle("/metrics", promhttp.Handler())

	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.processor.Health(r.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	health := s.processor.Health(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"processedCount": health.ProcessedCount,
		"errorCount":     health.ErrorCount,
		"uptimeSeconds":  int64(health.Uptime.Seconds()),
		"lastActivity":   health.LastActivity,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
