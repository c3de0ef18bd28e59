// Package api exposes the brainstorming engine over JSON HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/store"
)

type Server struct {
	facilitator *agents.Facilitator
	store       *store.ContextStore
	catalog     *frameworks.Catalog
	exporter    *agents.Exporter // nil when Linear is not configured
	logger      *zap.Logger
	mux         *http.ServeMux
	extra       map[string]http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithExporter enables POST /api/sessions/{id}/export.
func WithExporter(exporter *agents.Exporter) Option {
	return func(s *Server) { s.exporter = exporter }
}

// WithHandler mounts an additional handler, such as the Slack events endpoint.
func WithHandler(pattern string, h http.Handler) Option {
	return func(s *Server) { s.extra[pattern] = h }
}

func NewServer(facilitator *agents.Facilitator, st *store.ContextStore, catalog *frameworks.Catalog, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = frameworks.Default()
	}

	s := &Server{
		facilitator: facilitator,
		store:       st,
		catalog:     catalog,
		logger:      logger,
		mux:         http.NewServeMux(),
		extra:       make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/turn", s.handleTurn)

	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("GET /api/sessions/{id}/summary", s.handleSummary)
	s.mux.HandleFunc("POST /api/sessions/{id}/decisions", s.handleRecordDecision)
	s.mux.HandleFunc("POST /api/sessions/{id}/assumptions", s.handleAddAssumption)
	s.mux.HandleFunc("PUT /api/sessions/{id}/stage", s.handleSetStage)
	s.mux.HandleFunc("PUT /api/sessions/{id}/domain", s.handleSetDomain)
	s.mux.HandleFunc("GET /api/sessions/{id}/learnings", s.handleLearnings)
	s.mux.HandleFunc("POST /api/sessions/{id}/learnings", s.handleAddLearning)
	s.mux.HandleFunc("POST /api/sessions/{id}/export", s.handleExport)

	s.mux.HandleFunc("GET /api/frameworks", s.handleListFrameworks)
	s.mux.HandleFunc("GET /api/frameworks/{id}", s.handleGetFramework)

	for pattern, h := range s.extra {
		s.mux.Handle(pattern, h)
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("🚀 HTTP server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
