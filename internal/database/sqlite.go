package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/shubh-37/prosora/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_contexts (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL DEFAULT 'general',
	stage TEXT NOT NULL DEFAULT 'discovery',
	problems TEXT NOT NULL DEFAULT '[]',
	solutions TEXT NOT NULL DEFAULT '[]',
	assumptions TEXT NOT NULL DEFAULT '[]',
	insights TEXT NOT NULL DEFAULT '[]',
	decisions TEXT NOT NULL DEFAULT '[]',
	learnings TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_contexts_updated ON session_contexts(updated_at);
`

// SQLiteRepository stores session contexts in a local SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("✅ database connected", zap.String("backend", "sqlite"), zap.String("path", path))
	return &SQLiteRepository{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.SessionContext, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, domain, stage, problems, solutions, assumptions,
		       insights, decisions, learnings, created_at, updated_at
		FROM session_contexts WHERE id = ?`, id)

	c, err := scanSQLiteContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session context: %w", err)
	}
	return c, true, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, c *models.SessionContext) error {
	recs, err := encodeRecords(c)
	if err != nil {
		return err
	}
	problems, err := json.Marshal(nonNil(c.Problems))
	if err != nil {
		return fmt.Errorf("failed to marshal problems: %w", err)
	}
	solutions, err := json.Marshal(nonNil(c.Solutions))
	if err != nil {
		return fmt.Errorf("failed to marshal solutions: %w", err)
	}
	assumptions, err := json.Marshal(nonNil(c.Assumptions))
	if err != nil {
		return fmt.Errorf("failed to marshal assumptions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO session_contexts (id, domain, stage, problems, solutions, assumptions,
		                              insights, decisions, learnings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			domain = excluded.domain, stage = excluded.stage,
			problems = excluded.problems, solutions = excluded.solutions,
			assumptions = excluded.assumptions, insights = excluded.insights,
			decisions = excluded.decisions, learnings = excluded.learnings,
			created_at = excluded.created_at, updated_at = excluded.updated_at`,
		c.ID,
		string(c.Domain),
		string(c.Stage),
		string(problems),
		string(solutions),
		string(assumptions),
		string(recs.insights),
		string(recs.decisions),
		string(recs.learnings),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save session context: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_contexts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session context: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.SessionContext, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, domain, stage, problems, solutions, assumptions,
		       insights, decisions, learnings, created_at, updated_at
		FROM session_contexts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*models.SessionContext
	for rows.Next() {
		c, err := scanSQLiteContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteContext(row rowScanner) (*models.SessionContext, error) {
	c := &models.SessionContext{}
	var domain, stage, problems, solutions, assumptions string
	var insights, decisions, learnings string
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &domain, &stage, &problems, &solutions, &assumptions,
		&insights, &decisions, &learnings, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Domain = models.Domain(domain)
	c.Stage = models.Stage(stage)

	for _, f := range []struct {
		raw  string
		dest *[]string
	}{{problems, &c.Problems}, {solutions, &c.Solutions}, {assumptions, &c.Assumptions}} {
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal text list: %w", err)
		}
		*f.dest = nonNil(*f.dest)
	}

	recs := records{insights: []byte(insights), decisions: []byte(decisions), learnings: []byte(learnings)}
	if err := recs.decodeInto(c); err != nil {
		return nil, err
	}

	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}
