// Package skills resolves skill names against the synonym lexicon so that
// "k8s" and "Kubernetes" are recognized as the same skill.
package skills

import (
	"strings"

	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/parsing"
)

// Resolver answers equivalence questions over a fixed set of synonym groups.
// A term may belong to more than one group ("postgresql" is both a database
// and a flavour of "sql").
type Resolver struct {
	groups  [][]string
	byTerm  map[string][]int
	canonOf map[string]string
}

// NewResolver indexes the given synonym groups. Members are folded to
// lowercase without diacritics.
func NewResolver(groups []lexicon.SynonymGroup) *Resolver {
	r := &Resolver{
		groups:  make([][]string, 0, len(groups)),
		byTerm:  make(map[string][]int),
		canonOf: make(map[string]string),
	}

	for _, g := range groups {
		members := make([]string, 0, 1+len(g.Aliases))
		seen := make(map[string]bool)
		for _, m := range g.Members() {
			m = normalizeSkillName(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			members = append(members, m)
		}
		if len(members) == 0 {
			continue
		}

		idx := len(r.groups)
		r.groups = append(r.groups, members)
		for _, m := range members {
			r.byTerm[m] = append(r.byTerm[m], idx)
			if _, ok := r.canonOf[m]; !ok {
				r.canonOf[m] = members[0]
			}
		}
	}
	return r
}

// Canonical returns the canonical name of the first group containing term,
// or the normalized term itself when it has no synonyms
func (r *Resolver) Canonical(term string) string {
	n := normalizeSkillName(term)
	if c, ok := r.canonOf[n]; ok {
		return c
	}
	return n
}

// VariantsOf returns every other member of every group containing term, in
// lexicon order. The term itself is never included.
func (r *Resolver) VariantsOf(term string) []string {
	n := normalizeSkillName(term)
	var out []string
	seen := map[string]bool{n: true}
	for _, idx := range r.byTerm[n] {
		for _, m := range r.groups[idx] {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// AreEquivalent reports whether a and b name the same skill
func (r *Resolver) AreEquivalent(a, b string) bool {
	na, nb := normalizeSkillName(a), normalizeSkillName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	for _, i := range r.byTerm[na] {
		for _, j := range r.byTerm[nb] {
			if i == j {
				return true
			}
		}
	}
	return false
}

// normalizeSkillName folds case and diacritics and collapses whitespace
func normalizeSkillName(name string) string {
	return strings.Join(strings.Fields(parsing.Fold(name)), " ")
}
