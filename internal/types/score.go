// Package types provides type definitions for structured data used throughout the resume-fit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ATSBreakdown holds the automated-screening sub-scores (0-100 each)
type ATSBreakdown struct {
	KeywordCoverage int `json:"keyword_coverage"`
	FormatScore     int `json:"format_score"`
	SectionScore    int `json:"section_score"`
	LengthScore     int `json:"length_score"`
}

// ReviewerBreakdown holds the human-reviewer sub-scores (0-100 each)
type ReviewerBreakdown struct {
	MetricsScore     int `json:"metrics_score"`
	ActionVerbScore  int `json:"action_verb_score"`
	ReadabilityScore int `json:"readability_score"`
}

// ScoreBreakdown groups both families of sub-scores
type ScoreBreakdown struct {
	ATS      ATSBreakdown      `json:"ats"`
	Reviewer ReviewerBreakdown `json:"reviewer"`
}

// ScoreResult is an immutable snapshot of one scoring run
type ScoreResult struct {
	ATSScore        int            `json:"ats_score"`
	RecruiterScore  int            `json:"recruiter_score"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	MissingKeywords []string       `json:"missing_keywords"`
	Recommendations []string       `json:"recommendations"`
}
