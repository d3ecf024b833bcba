package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ghostlabs/ghost-core/internal/execution"
	"github.com/ghostlabs/ghost-core/internal/governance"
	"github.com/ghostlabs/ghost-core/internal/llm"
	"github.com/ghostlabs/ghost-core/internal/model"
	"github.com/ghostlabs/ghost-core/internal/ratelimit"
	"github.com/ghostlabs/ghost-core/internal/telemetry"
)

// EventStore is the ingestion/clustering storage port:
// persist a batch on write, serve the most recent n events on read.
// internal/store/pg.EventStore and internal/governance/memstore.Store both
// satisfy it.
type EventStore interface {
	InsertBatch(ctx context.Context, orgID string, batch model.SecureEventBatch) error
	RecentEvents(ctx context.Context, orgID string, n int) ([]model.SecureEvent, error)
}

// Server wires the five HTTP endpoints plus the live-execution websocket
// push against a governance Store, an EventStore, an LLM port, and an
// Execution Engine.
type Server struct {
	Store        governance.Store
	Events       EventStore
	LLM          llm.Port
	Executor     *execution.Engine
	RateLimit    *ratelimit.KeyedLimiter
	Notify       governance.ApprovalNotifier
	Metrics      *telemetry.Counters
	BearerToken  string
	MaxBodyBytes int64
	Logger       *slog.Logger

	hub *hub
	mux http.Handler
}

// New builds a Server. Call Mux to obtain its http.Handler.
func New(s *Server) *Server {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Metrics == nil {
		s.Metrics = telemetry.Noop().Metrics
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = 2 << 20
	}
	s.hub = newHub()
	return s
}

// Mux builds (once) and returns the server's handler.
func (s *Server) Mux() http.Handler {
	if s.mux != nil {
		return s.mux
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest-events", requireBearer(s.BearerToken, s.handleIngestEvents))
	mux.HandleFunc("POST /pattern-detector", requireBearer(s.BearerToken, s.handlePatternDetector))
	mux.HandleFunc("POST /ghost-executor", requireBearer(s.BearerToken, s.handleGhostExecutor))
	mux.HandleFunc("POST /approve-ghost", requireBearer(s.BearerToken, s.handleApproveGhost))
	mux.HandleFunc("POST /promote-pattern", requireBearer(s.BearerToken, s.handlePromotePattern))
	mux.HandleFunc("GET /live", requireBearer(s.BearerToken, s.handleLive))
	s.mux = withCORS(mux)
	return s.mux
}

// Run starts an http.Server on addr and blocks until ctx is cancelled,
// then shuts down gracefully with a 5s deadline.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.Mux(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("httpapi: listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
