package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shubh-37/prosora/internal/models"
)

// ContextRepository stores session contexts in PostgreSQL.
type ContextRepository struct {
	db *DB
}

func NewContextRepository(db *DB) *ContextRepository {
	return &ContextRepository{db: db}
}

const selectContext = `
	SELECT id, domain, stage, problems, solutions, assumptions,
	       insights, decisions, learnings, created_at, updated_at
	FROM session_contexts
`

// Get retrieves a session context by id
func (r *ContextRepository) Get(ctx context.Context, id string) (*models.SessionContext, bool, error) {
	row := r.db.Pool.QueryRow(ctx, selectContext+` WHERE id = $1`, id)

	sessionCtx, err := scanContext(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session context: %w", err)
	}

	return sessionCtx, true, nil
}

// Put inserts or replaces a session context
func (r *ContextRepository) Put(ctx context.Context, c *models.SessionContext) error {
	recs, err := encodeRecords(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO session_contexts (id, domain, stage, problems, solutions, assumptions,
		                              insights, decisions, learnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET domain = EXCLUDED.domain, stage = EXCLUDED.stage,
		    problems = EXCLUDED.problems, solutions = EXCLUDED.solutions,
		    assumptions = EXCLUDED.assumptions, insights = EXCLUDED.insights,
		    decisions = EXCLUDED.decisions, learnings = EXCLUDED.learnings,
		    created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Pool.Exec(ctx, query,
		c.ID,
		string(c.Domain),
		string(c.Stage),
		nonNil(c.Problems),
		nonNil(c.Solutions),
		nonNil(c.Assumptions),
		recs.insights,
		recs.decisions,
		recs.learnings,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session context: %w", err)
	}

	return nil
}

// Delete removes a session context. Deleting a missing id is not an error.
func (r *ContextRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM session_contexts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session context: %w", err)
	}
	return nil
}

// List retrieves every session context, most recently updated first
func (r *ContextRepository) List(ctx context.Context) ([]*models.SessionContext, error) {
	rows, err := r.db.Pool.Query(ctx, selectContext+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*models.SessionContext
	for rows.Next() {
		sessionCtx, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session context: %w", err)
		}
		contexts = append(contexts, sessionCtx)
	}

	return contexts, rows.Err()
}

func scanContext(row pgx.Row) (*models.SessionContext, error) {
	c := &models.SessionContext{}
	var domain, stage string
	var recs records

	err := row.Scan(
		&c.ID,
		&domain,
		&stage,
		&c.Problems,
		&c.Solutions,
		&c.Assumptions,
		&recs.insights,
		&recs.decisions,
		&recs.learnings,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Domain = models.Domain(domain)
	c.Stage = models.Stage(stage)
	c.Problems = nonNil(c.Problems)
	c.Solutions = nonNil(c.Solutions)
	c.Assumptions = nonNil(c.Assumptions)

	if err := recs.decodeInto(c); err != nil {
		return nil, err
	}
	return c, nil
}
