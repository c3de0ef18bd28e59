// Package store keeps session contexts together with the intelligence engines
// bound to them.
//
// Store methods do not take the per-session lock themselves. Callers that run a
// fetch, mutate, save sequence wrap it in Lock so concurrent turns on one
// session cannot overwrite each other. Cleanup is the exception: it try-locks
// each expired session and skips the ones that are busy.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/models"
)

const (
	summaryRecommendations = 3
	summaryPredictions     = 2
)

// ContextStore maps session ids to (context, engine) pairs.
type ContextStore struct {
	backend Backend
	locks   *sessionLocks
	loads   singleflight.Group

	mu      sync.RWMutex
	engines map[string]*intelligence.Engine

	now    func() time.Time
	logger *zap.Logger
}

// Option configures a ContextStore.
type Option func(*ContextStore)

// WithClock overrides the time source for new contexts and cleanup.
func WithClock(now func() time.Time) Option {
	return func(s *ContextStore) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *ContextStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store over backend.
func New(backend Backend, opts ...Option) *ContextStore {
	s := &ContextStore{
		backend: backend,
		locks:   newSessionLocks(),
		engines: make(map[string]*intelligence.Engine),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitialData seeds a session when GetOrCreate has to create it.
type InitialData struct {
	Domain models.Domain
}

// Lock takes the exclusive per-session lock and returns its release function.
// The release function is safe to call more than once.
func (s *ContextStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}

// GetOrCreate returns the engine bound to sessionID, creating a discovery-stage
// context when none exists. initial is ignored for existing sessions.
func (s *ContextStore) GetOrCreate(ctx context.Context, sessionID string, initial *InitialData) (*intelligence.Engine, error) {
	v, err, _ := s.loads.Do(sessionID, func() (interface{}, error) {
		engine, ok, err := s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if ok {
			return engine, nil
		}

		domain := models.DomainGeneral
		if initial != nil && initial.Domain != "" {
			domain = initial.Domain
		}

		engine = intelligence.NewEngine(
			models.NewSessionContext(sessionID, domain, s.now()),
			intelligence.WithClock(s.now),
		)
		if err := s.backend.Put(ctx, engine.ExportContext()); err != nil {
			return nil, fmt.Errorf("failed to create session %s: %w", sessionID, err)
		}

		s.mu.Lock()
		s.engines[sessionID] = engine
		s.mu.Unlock()

		s.logger.Info("session created",
			zap.String("session_id", sessionID),
			zap.String("domain", string(domain)))

		return engine, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*intelligence.Engine), nil
}

// load finds the engine for sessionID in the cache, falling back to the backend.
func (s *ContextStore) load(ctx context.Context, sessionID string) (*intelligence.Engine, bool, error) {
	s.mu.RLock()
	engine, ok := s.engines[sessionID]
	s.mu.RUnlock()
	if ok {
		return engine, true, nil
	}

	sessionCtx, ok, err := s.backend.Get(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if !ok {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.engines[sessionID]; ok {
		return cached, true, nil
	}
	engine = intelligence.NewEngine(sessionCtx, intelligence.WithClock(s.now))
	s.engines[sessionID] = engine
	return engine, true, nil
}

// Save persists the engine's exported context under sessionID and rebinds the
// engine, overwriting any prior entry. Callers mutate a Fork of the loaded
// engine so that a failed Save leaves the cached session untouched.
func (s *ContextStore) Save(ctx context.Context, sessionID string, engine *intelligence.Engine) error {
	snapshot := engine.ExportContext()
	snapshot.ID = sessionID

	if err := s.backend.Put(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	s.engines[sessionID] = engine
	s.mu.Unlock()

	return nil
}

// GetSummary projects the session for callers. ok is false when the session does not exist.
func (s *ContextStore) GetSummary(ctx context.Context, sessionID string) (models.Summary, bool, error) {
	engine, ok, err := s.load(ctx, sessionID)
	if err != nil || !ok {
		return models.Summary{}, false, err
	}
	return Summarize(engine), true, nil
}

// Summarize builds the caller-facing summary of an engine's context, keeping the
// first three recommendations and the first two predictions.
func Summarize(engine *intelligence.Engine) models.Summary {
	sessionCtx, recommendations, predictions := engine.Snapshot()

	if len(recommendations) > summaryRecommendations {
		recommendations = recommendations[:summaryRecommendations]
	}
	if len(predictions) > summaryPredictions {
		predictions = predictions[:summaryPredictions]
	}

	return models.Summary{
		Domain:          sessionCtx.Domain,
		Stage:           sessionCtx.Stage,
		InsightCount:    len(sessionCtx.Insights),
		ProblemCount:    len(sessionCtx.Problems),
		SolutionCount:   len(sessionCtx.Solutions),
		Recommendations: recommendations,
		Predictions:     predictions,
	}
}

// Engine returns the engine for an existing session without creating one.
func (s *ContextStore) Engine(ctx context.Context, sessionID string) (*intelligence.Engine, bool, error) {
	return s.load(ctx, sessionID)
}

// ListAll returns a snapshot of every stored context, in no particular order.
func (s *ContextStore) ListAll(ctx context.Context) ([]*models.SessionContext, error) {
	contexts, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return contexts, nil
}

// Delete removes a session. Callers should hold the session lock.
func (s *ContextStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.backend.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	delete(s.engines, sessionID)
	s.mu.Unlock()

	return nil
}

// Cleanup removes every session whose updatedAt is older than maxAgeDays.
// Sessions locked by an in-flight turn are left for a later pass.
func (s *ContextStore) Cleanup(ctx context.Context, maxAgeDays int) error {
	cutoff := s.now().AddDate(0, 0, -maxAgeDays)

	contexts, err := s.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions for cleanup: %w", err)
	}

	removed, skipped := 0, 0
	for _, sessionCtx := range contexts {
		if !sessionCtx.UpdatedAt.Before(cutoff) {
			continue
		}

		unlock, ok := s.locks.TryLock(sessionCtx.ID)
		if !ok {
			skipped++
			continue
		}
		deleted, err := s.deleteIfStale(ctx, sessionCtx.ID, cutoff)
		unlock()
		if err != nil {
			return err
		}
		if deleted {
			removed++
		}
	}

	s.logger.Info("session cleanup finished",
		zap.Int("removed", removed),
		zap.Int("skipped_busy", skipped),
		zap.Time("cutoff", cutoff))

	return nil
}

// deleteIfStale re-reads the session under its lock, since a turn may have
// saved it after the listing, and deletes it only if it is still expired.
func (s *ContextStore) deleteIfStale(ctx context.Context, sessionID string, cutoff time.Time) (bool, error) {
	var updatedAt time.Time

	s.mu.RLock()
	engine, cached := s.engines[sessionID]
	s.mu.RUnlock()

	if cached {
		updatedAt = engine.ExportContext().UpdatedAt
	} else {
		current, ok, err := s.backend.Get(ctx, sessionID)
		if err != nil {
			return false, fmt.Errorf("failed to reload session %s for cleanup: %w", sessionID, err)
		}
		if !ok {
			return false, nil
		}
		updatedAt = current.UpdatedAt
	}

	if !updatedAt.Before(cutoff) {
		return false, nil
	}
	return true, s.Delete(ctx, sessionID)
}
