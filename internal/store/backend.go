package store

import (
	"context"

	"github.com/shubh-37/prosora/internal/models"
)

// Backend persists session contexts keyed by session id.
// Get reports a missing session with ok=false rather than an error.
type Backend interface {
	Get(ctx context.Context, sessionID string) (*models.SessionContext, bool, error)
	Put(ctx context.Context, sessionCtx *models.SessionContext) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]*models.SessionContext, error)
}
