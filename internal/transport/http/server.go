package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	taskDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/task/domain"
	telemetryDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/domain"
	sloghttp "github.com/samber/slog-http"
)

// StatsProvider produces telemetry snapshots.
type StatsProvider interface {
	Snapshot(ctx context.Context) (telemetryDomain.Snapshot, error)
}

// TaskLister lists tracked operations.
type TaskLister interface {
	Tasks() []taskDomain.Snapshot
}

// Server exposes health, telemetry and task endpoints
type Server struct {
	port   string
	stats  StatsProvider
	tasks  TaskLister
	logger *slog.Logger
}

// New creates a new HTTP server
func New(port string, stats StatsProvider, tasks TaskLister) *Server {
	return &Server{
		port:   port,
		stats:  stats,
		tasks:  tasks,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routed handler with logging and recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /tasks", s.handleTasks)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Run serves until ctx is done. An empty port disables the server.
func (s *Server) Run(ctx context.Context) error {
	if s.port == "" {
		s.logger.Info("HTTP server disabled")
		return nil
	}

	addr := fmt.Sprintf(":%s", s.port)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("Error collecting stats", "error", err)
		http.Error(w, "Failed to collect stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.tasks.Tasks()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
