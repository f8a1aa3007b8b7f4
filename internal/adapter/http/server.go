package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// DeckFileChecker reports ready once the built deck exists and is non-empty.
type DeckFileChecker struct {
	Path string
}

func (c DeckFileChecker) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("deck not built: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("deck file %s is empty", c.Path)
	}
	return nil
}

// Server previews a built deck and exposes health, readiness, and metrics
// HTTP endpoints.
type Server struct {
	httpServer *http.Server
	deckPath   string
	logger     *slog.Logger
}

// NewServer creates an HTTP server serving the deck at / plus /healthz,
// /readyz, and /metrics routes.
func NewServer(addr, deckPath string, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deckPath: deckPath,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDeck)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "deck", s.deckPath)
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

// handleDeck serves the built deck file. The file is re-read per request so a
// rebuild shows up without restarting the server.
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.deckPath)
	if err != nil {
		s.logger.Warn("deck not available", "path", s.deckPath, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"status": "deck not built",
			"error":  err.Error(),
		})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data) //nolint:errcheck // client disconnects are not actionable
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
