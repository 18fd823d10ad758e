package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-fit/internal/types"
)

// SaveJobAnalysis stores an analysis keyed by the posting's content hash.
// Saving the same posting again replaces the analysis and keeps the id.
func (db *DB) SaveJobAnalysis(ctx context.Context, title, body string, analysis *types.JobAnalysis) (uuid.UUID, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job analysis: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_analyses (title, content_hash, analysis)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (content_hash) DO UPDATE SET
		     title = EXCLUDED.title,
		     analysis = EXCLUDED.analysis,
		     updated_at = NOW()
		 RETURNING id`,
		title, AnalysisHash(title, body), analysisJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job analysis: %w", err)
	}
	return id, nil
}

// GetJobAnalysis retrieves an analysis by id, or nil if it does not exist
func (db *DB) GetJobAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	return db.getJobAnalysis(ctx, "id", id)
}

// GetJobAnalysisByHash retrieves an analysis by posting hash (see AnalysisHash)
func (db *DB) GetJobAnalysisByHash(ctx context.Context, hash string) (*types.AnalysisRecord, error) {
	return db.getJobAnalysis(ctx, "content_hash", hash)
}

func (db *DB) getJobAnalysis(ctx context.Context, column string, value any) (*types.AnalysisRecord, error) {
	var r types.AnalysisRecord
	var analysisJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, content_hash, analysis, created_at
		 FROM job_analyses WHERE `+column+` = $1`,
		value,
	).Scan(&r.ID, &r.Title, &r.ContentHash, &analysisJSON, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job analysis: %w", err)
	}

	if err := json.Unmarshal(analysisJSON, &r.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job analysis: %w", err)
	}
	return &r, nil
}

// ListJobAnalyses returns the most recent analyses first
func (db *DB) ListJobAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, content_hash, analysis, created_at
		 FROM job_analyses ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job analyses: %w", err)
	}
	defer rows.Close()

	var records []types.AnalysisRecord
	for rows.Next() {
		var r types.AnalysisRecord
		var analysisJSON []byte
		if err := rows.Scan(&r.ID, &r.Title, &r.ContentHash, &analysisJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job analysis: %w", err)
		}
		if err := json.Unmarshal(analysisJSON, &r.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job analysis %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteJobAnalysis removes an analysis and, by cascade, its results
func (db *DB) DeleteJobAnalysis(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM job_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job analysis: %w", err)
	}
	return nil
}
