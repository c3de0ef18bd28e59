package store

import (
	"context"
	"sync"

	"github.com/shubh-37/prosora/internal/models"
)

// MemoryBackend keeps session contexts in process memory. Values are copied on
// the way in and out so callers never share state with the backend.
type MemoryBackend struct {
	mu       sync.RWMutex
	contexts map[string]*models.SessionContext
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{contexts: make(map[string]*models.SessionContext)}
}

func (b *MemoryBackend) Get(_ context.Context, sessionID string) (*models.SessionContext, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.contexts[sessionID]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (b *MemoryBackend) Put(_ context.Context, sessionCtx *models.SessionContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.contexts[sessionCtx.ID] = sessionCtx.Clone()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.contexts, sessionID)
	return nil
}

func (b *MemoryBackend) List(_ context.Context) ([]*models.SessionContext, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*models.SessionContext, 0, len(b.contexts))
	for _, c := range b.contexts {
		out = append(out, c.Clone())
	}
	return out, nil
}
