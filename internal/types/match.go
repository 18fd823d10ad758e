// Package types provides type definitions for structured data used throughout the resume-fit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MatchType says how a requirement was satisfied by a profile
type MatchType string

// Match types
const (
	MatchDirect  MatchType = "direct"
	MatchPartial MatchType = "partial"
	MatchGap     MatchType = "gap"
)

// MatchItem is the classification of a single requirement.
// Evidence is set for direct and partial matches, Suggestion only for gaps.
type MatchItem struct {
	Term       string    `json:"term"`
	MatchType  MatchType `json:"match_type"`
	Evidence   string    `json:"evidence,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// MatchResult is the gap analysis between a profile and a requirement model.
// Direct, Partial and Gap are disjoint and together cover every requirement once.
type MatchResult struct {
	MatchPercent    int         `json:"match_percent"`
	Direct          []MatchItem `json:"direct"`
	Partial         []MatchItem `json:"partial"`
	Gap             []MatchItem `json:"gap"`
	Recommendations []string    `json:"recommendations"`
}

// Total returns the number of classified requirements
func (m *MatchResult) Total() int {
	return len(m.Direct) + len(m.Partial) + len(m.Gap)
}
