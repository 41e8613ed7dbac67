// Package http exposes health, metrics, and snapshot read endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
	"github.com/couchcryptid/waterbody-recon/internal/export"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SnapshotSource hands out the current snapshot, or nil before the first
// successful computation.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
}

// Server exposes health, readiness, metrics, and snapshot API endpoints.
type Server struct {
	httpServer *http.Server
	source     SnapshotSource
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, ready ReadinessChecker, source SnapshotSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/summaries", s.handleSummaries)
	mux.HandleFunc("GET /api/national", s.handleNational)
	mux.HandleFunc("GET /api/rankings", s.handleRankings)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/report", s.handleExportReport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// currentSnapshot fetches the snapshot or answers 503 when none exists yet.
func (s *Server) currentSnapshot(w http.ResponseWriter) (*domain.Snapshot, bool) {
	snap := s.source.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no snapshot available yet",
		})
		return nil, false
	}
	return snap, true
}

func (s *Server) handleSummaries(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summaries":    snap.Summaries,
		"generated_at": snap.GeneratedAt,
	})
}

func (s *Server) handleNational(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.National)
}

func (s *Server) handleRankings(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Rankings)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="state-summaries.csv"`)
	if err := export.WriteCSV(w, snap.Summaries); err != nil {
		s.logger.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleExportReport(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.currentSnapshot(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.WriteReport(w, snap.National, snap.Summaries); err != nil {
		s.logger.Error("report export failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
