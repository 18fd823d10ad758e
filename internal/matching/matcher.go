// Package matching classifies job requirements against a candidate profile as
// direct, partial (via a synonym) or gap.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/skills"
	"github.com/jonathan/resume-fit/internal/types"
)

// partialCredit is the weight of a synonym match relative to a literal one
const partialCredit = 0.5

const (
	sourceSkills  = "skills"
	sourceProfile = "profile text"
)

// Matcher compares requirement models with candidate profiles
type Matcher struct {
	resolver           *skills.Resolver
	hints              map[string]string
	maxRecommendations int
}

// Option configures a Matcher
type Option func(*Matcher)

// WithMaxRecommendations caps the templated recommendations attached to a result
func WithMaxRecommendations(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxRecommendations = n
		}
	}
}

// NewMatcher creates a matcher using the lexicon's synonym groups and gap hints
func NewMatcher(lex *lexicon.Lexicon, opts ...Option) *Matcher {
	if lex == nil {
		lex = lexicon.Default()
	}

	hints := make(map[string]string, len(lex.GapHints))
	for term, hint := range lex.GapHints {
		hints[parsing.Fold(strings.TrimSpace(term))] = hint
	}

	m := &Matcher{
		resolver:           skills.NewResolver(lex.Synonyms),
		hints:              hints,
		maxRecommendations: recommend.MaxRecommendations,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolver exposes the synonym resolver
func (m *Matcher) Resolver() *skills.Resolver {
	return m.resolver
}

// MatchProfile matches reqs against a structured profile
func (m *Matcher) MatchProfile(reqs []types.Requirement, profile *types.Profile) types.MatchResult {
	if profile == nil {
		return m.Match(reqs, nil, "")
	}
	return m.Match(reqs, profile.Skills, profile.Text())
}

// Match classifies every requirement exactly once. The result is a fresh value;
// an empty requirement list yields 100% with all lists empty.
func (m *Matcher) Match(reqs []types.Requirement, profileSkills []string, profileText string) types.MatchResult {
	result := types.MatchResult{
		Direct:          []types.MatchItem{},
		Partial:         []types.MatchItem{},
		Gap:             []types.MatchItem{},
		Recommendations: []string{},
	}
	if len(reqs) == 0 {
		result.MatchPercent = 100
		return result
	}

	skillHaystacks := make([]parsing.Haystack, 0, len(profileSkills))
	for _, s := range profileSkills {
		if strings.TrimSpace(s) != "" {
			skillHaystacks = append(skillHaystacks, parsing.NewHaystack(s))
		}
	}
	p := profileIndex{skills: skillHaystacks, text: parsing.NewHaystack(profileText)}

	for _, req := range reqs {
		item := m.classify(req.Term, p)
		switch item.MatchType {
		case types.MatchDirect:
			result.Direct = append(result.Direct, item)
		case types.MatchPartial:
			result.Partial = append(result.Partial, item)
		default:
			result.Gap = append(result.Gap, item)
		}
	}

	result.MatchPercent = MatchPercent(len(result.Direct), len(result.Partial), len(reqs))

	sig := recommend.NewMatchSignals(result.MatchPercent, result.Direct, result.Partial, result.Gap, reqs)
	sig.ProfileExcerpt = profileText
	result.Recommendations = recommend.Deterministic(sig, m.maxRecommendations)
	return result
}

type profileIndex struct {
	skills []parsing.Haystack
	text   parsing.Haystack
}

// find reports where term occurs, skills first
func (p profileIndex) find(term string) (string, bool) {
	for _, s := range p.skills {
		if s.Contains(term) {
			return sourceSkills, true
		}
	}
	if p.text.Contains(term) {
		return sourceProfile, true
	}
	return "", false
}

func (m *Matcher) classify(term string, p profileIndex) types.MatchItem {
	if where, ok := p.find(term); ok {
		return types.MatchItem{
			Term:      term,
			MatchType: types.MatchDirect,
			Evidence:  "found in " + where,
		}
	}

	for _, variant := range m.resolver.VariantsOf(term) {
		if where, ok := p.find(variant); ok {
			return types.MatchItem{
				Term:      term,
				MatchType: types.MatchPartial,
				Evidence:  fmt.Sprintf("synonym %q found in %s", variant, where),
			}
		}
	}

	return types.MatchItem{
		Term:       term,
		MatchType:  types.MatchGap,
		Suggestion: m.Suggestion(term),
	}
}

// Suggestion returns the hint for a missing term: the lexicon hint for the term
// or its canonical synonym, else a generic template
func (m *Matcher) Suggestion(term string) string {
	key := parsing.Fold(strings.TrimSpace(term))
	if hint, ok := m.hints[key]; ok {
		return hint
	}
	if hint, ok := m.hints[m.resolver.Canonical(key)]; ok {
		return hint
	}
	return fmt.Sprintf("Add evidence of %s to your profile, for example a project or certification that uses it.", strings.TrimSpace(term))
}

// MatchPercent is round(100 * (direct + 0.5*partial) / max(1, total)), clamped to [0,100]
func MatchPercent(direct, partial, total int) int {
	score := 100 * (float64(direct) + partialCredit*float64(partial)) / float64(max(1, total))
	return clamp(int(math.Round(score)))
}

func clamp(v int) int {
	return min(100, max(0, v))
}
