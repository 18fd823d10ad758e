// Package types provides type definitions for structured data used throughout the resume-fit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Profile is a candidate profile assembled by the caller
type Profile struct {
	Summary     string       `json:"summary,omitempty"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences,omitempty"`
	Projects    []Project    `json:"projects,omitempty"`
}

// Experience is one position held by the candidate
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
}

// Project is a side or portfolio project
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Text concatenates the free-text fields of the profile, one field per line.
// Skills are not included; matchers consult them separately.
func (p *Profile) Text() string {
	if p == nil {
		return ""
	}

	parts := make([]string, 0, 1+3*len(p.Experiences)+2*len(p.Projects))
	parts = appendNonEmpty(parts, p.Summary)
	for _, exp := range p.Experiences {
		parts = appendNonEmpty(parts, exp.Title, exp.Company, exp.Description)
	}
	for _, proj := range p.Projects {
		parts = appendNonEmpty(parts, proj.Name, proj.Description)
	}
	return strings.Join(parts, "\n")
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}
