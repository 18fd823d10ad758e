package parsing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// DecodeRequirements reads a requirement model from JSON. It accepts either a bare
// array of requirements or an object with a "requirements" field (a stored JobAnalysis).
func DecodeRequirements(data []byte) ([]types.Requirement, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{Message: "empty requirements document"}
	}

	var reqs []types.Requirement
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, &ParseError{Message: "failed to parse requirements array", Cause: err}
		}
	} else {
		var analysis types.JobAnalysis
		if err := json.Unmarshal(trimmed, &analysis); err != nil {
			return nil, &ParseError{Message: "failed to parse job analysis", Cause: err}
		}
		reqs = analysis.Requirements
	}

	if err := CheckRequirements(reqs); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []types.Requirement{}
	}
	return reqs, nil
}

// CheckRequirements verifies terms are non-empty and unique, weights are
// non-negative and categories are known
func CheckRequirements(reqs []types.Requirement) error {
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		term := strings.ToLower(strings.TrimSpace(r.Term))
		if term == "" {
			return &ValidationError{Field: fmt.Sprintf("requirements[%d].term", i), Message: "term is required"}
		}
		if seen[term] {
			return &ValidationError{Field: fmt.Sprintf("requirements[%d].term", i), Message: fmt.Sprintf("duplicate term %q", r.Term)}
		}
		seen[term] = true
		if r.Weight < 0 {
			return &ValidationError{Field: fmt.Sprintf("requirements[%d].weight", i), Message: "weight must be non-negative"}
		}
		if !r.Category.Valid() {
			return &ValidationError{Field: fmt.Sprintf("requirements[%d].category", i), Message: fmt.Sprintf("unknown category %q", r.Category)}
		}
	}
	return nil
}
