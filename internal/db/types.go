package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/types"
)

// DefaultListLimit caps list queries when no limit is given
const DefaultListLimit = 50

// MatchRecord is a stored match result
type MatchRecord struct {
	ID         uuid.UUID         `json:"id"`
	AnalysisID *uuid.UUID        `json:"analysis_id,omitempty"`
	Result     types.MatchResult `json:"result"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ScoreRecord is a stored score result
type ScoreRecord struct {
	ID         uuid.UUID         `json:"id"`
	AnalysisID *uuid.UUID        `json:"analysis_id,omitempty"`
	Result     types.ScoreResult `json:"result"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AnalysisHash identifies a posting by its title and body so re-analyzing the
// same posting updates one row
func AnalysisHash(title, body string) string {
	return ingestion.PostingHash(title, body)
}
