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

// SaveMatchResult stores a match result snapshot, optionally linked to an analysis
func (db *DB) SaveMatchResult(ctx context.Context, analysisID *uuid.UUID, result *types.MatchResult) (uuid.UUID, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal match result: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO match_results (analysis_id, match_percent, result)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		analysisID, result.MatchPercent, resultJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save match result: %w", err)
	}
	return id, nil
}

// GetMatchResult retrieves a match result by id, or nil if it does not exist
func (db *DB) GetMatchResult(ctx context.Context, id uuid.UUID) (*MatchRecord, error) {
	var r MatchRecord
	var resultJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, analysis_id, result, created_at FROM match_results WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.AnalysisID, &resultJSON, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}

	if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
	}
	return &r, nil
}

// SaveScoreResult stores a score result snapshot, optionally linked to an analysis
func (db *DB) SaveScoreResult(ctx context.Context, analysisID *uuid.UUID, result *types.ScoreResult) (uuid.UUID, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal score result: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO score_results (analysis_id, ats_score, recruiter_score, result)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		analysisID, result.ATSScore, result.RecruiterScore, resultJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save score result: %w", err)
	}
	return id, nil
}

// GetScoreResult retrieves a score result by id, or nil if it does not exist
func (db *DB) GetScoreResult(ctx context.Context, id uuid.UUID) (*ScoreRecord, error) {
	var r ScoreRecord
	var resultJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, analysis_id, result, created_at FROM score_results WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.AnalysisID, &resultJSON, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score result: %w", err)
	}

	if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score result: %w", err)
	}
	return &r, nil
}

// ListScoreResults returns the scores recorded against an analysis, newest first
func (db *DB) ListScoreResults(ctx context.Context, analysisID uuid.UUID, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, analysis_id, result, created_at FROM score_results
		 WHERE analysis_id = $1 ORDER BY created_at DESC LIMIT $2`,
		analysisID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list score results: %w", err)
	}
	defer rows.Close()

	var records []ScoreRecord
	for rows.Next() {
		var r ScoreRecord
		var resultJSON []byte
		if err := rows.Scan(&r.ID, &r.AnalysisID, &resultJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score result: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score result %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
