// Package types provides type definitions for structured data used throughout the resume-fit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a stored job analysis together with the posting it came from
type AnalysisRecord struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	ContentHash string      `json:"content_hash"`
	Analysis    JobAnalysis `json:"analysis"`
	CreatedAt   time.Time   `json:"created_at"`
}
