// Package daemon exposes the coordinator over a localhost HTTP API. The
// extension's content scripts post events here and the popup polls (or
// subscribes to the SSE stream) for burnout data.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/runnerr0/burnwatch/internal/config"
	"github.com/runnerr0/burnwatch/internal/coordinator"
	"github.com/runnerr0/burnwatch/internal/state"
)

// Server hosts the local HTTP API.
type Server struct {
	cfg    config.DaemonConfig
	coord  *coordinator.Coordinator
	state  state.Store
	logger *zap.Logger
}

// NewServer creates a Server around an already-started coordinator.
func NewServer(cfg config.DaemonConfig, coord *coordinator.Coordinator, stateStore state.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, coord: coord, state: stateStore, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	r.HandleFunc("/events", s.handleEvents).Methods("POST")
	r.HandleFunc("/burnout", s.handleBurnout).Methods("GET")
	r.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
	r.HandleFunc("/updates", s.handleUpdates).Methods("GET")
	r.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	r.HandleFunc("/settings", s.handlePutSettings).Methods("PUT")
	r.HandleFunc("/tracking", s.handleGetTracking).Methods("GET")
	r.HandleFunc("/tracking", s.handlePutTracking).Methods("PUT")
	r.HandleFunc("/export", s.handleExport).Methods("GET")
	r.HandleFunc("/reset", s.handleReset).Methods("POST")

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("daemon listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
