package database

import (
	"context"
	"fmt"
)

// CreateTables creates the session context table and its indexes
func (db *DB) CreateTables(ctx context.Context) error {
	db.logger.Info("creating database tables")

	sessionTable := `
	CREATE TABLE IF NOT EXISTS session_contexts (
		id TEXT PRIMARY KEY,
		domain VARCHAR(50) NOT NULL DEFAULT 'general',
		stage VARCHAR(50) NOT NULL DEFAULT 'discovery',
		problems TEXT[] NOT NULL DEFAULT '{}',
		solutions TEXT[] NOT NULL DEFAULT '{}',
		assumptions TEXT[] NOT NULL DEFAULT '{}',
		insights JSONB NOT NULL DEFAULT '[]',
		decisions JSONB NOT NULL DEFAULT '[]',
		learnings JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_session_contexts_updated ON session_contexts(updated_at);
	CREATE INDEX IF NOT EXISTS idx_session_contexts_domain ON session_contexts(domain);
	`

	if _, err := db.Pool.Exec(ctx, sessionTable); err != nil {
		return fmt.Errorf("failed to create session_contexts: %w", err)
	}

	db.logger.Info("✅ all tables created")
	return nil
}
