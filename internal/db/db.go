// Package db provides PostgreSQL storage for job analyses and result snapshots.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates the tables used by the store. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS job_analyses (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title        TEXT NOT NULL,
	content_hash TEXT NOT NULL UNIQUE,
	analysis     JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS match_results (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	analysis_id   UUID REFERENCES job_analyses(id) ON DELETE CASCADE,
	match_percent INTEGER NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS score_results (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	analysis_id     UUID REFERENCES job_analyses(id) ON DELETE CASCADE,
	ats_score       INTEGER NOT NULL,
	recruiter_score INTEGER NOT NULL,
	result          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_match_results_analysis ON match_results(analysis_id);
CREATE INDEX IF NOT EXISTS idx_score_results_analysis ON score_results(analysis_id);
`
