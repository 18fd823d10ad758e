// Package types provides type definitions for structured data used throughout the resume-fit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Category classifies how strongly a job posting asks for a requirement
type Category string

// Category values assigned during extraction
const (
	CategoryRequired  Category = "required"
	CategoryPreferred Category = "preferred"
	CategoryGeneral   Category = "general"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryRequired, CategoryPreferred, CategoryGeneral:
		return true
	default:
		return false
	}
}

// Requirement is a weighted, categorized term extracted from a job posting.
// Category is fixed at extraction time and never recomputed.
type Requirement struct {
	Term     string   `json:"term" validate:"required"`
	Weight   int      `json:"weight" validate:"gte=0"`
	Category Category `json:"category" validate:"required,oneof=required preferred general"`
}

// ExperienceLevel is the seniority detected in a job posting
type ExperienceLevel string

// Experience levels recognized by the extractor
const (
	LevelJunior ExperienceLevel = "Junior"
	LevelMid    ExperienceLevel = "Mid-Level"
	LevelSenior ExperienceLevel = "Senior"
)

// JobAnalysis is the requirement model of one job posting
type JobAnalysis struct {
	Requirements     []Requirement    `json:"requirements"`
	ExperienceLevel  *ExperienceLevel `json:"experience_level"`
	Responsibilities []string         `json:"responsibilities"`
}

// TotalWeight sums the weights of all requirements
func TotalWeight(reqs []Requirement) int {
	total := 0
	for _, r := range reqs {
		total += r.Weight
	}
	return total
}
