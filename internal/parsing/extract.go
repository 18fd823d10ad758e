// Package parsing turns job posting text into a weighted requirement model using
// frequency and phrase heuristics.
package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/types"
)

const (
	// Source weights: the title and opening line carry the highest-signal terms
	weightTitle          = 3
	weightFirstParagraph = 2
	weightBody           = 1

	// categoryWindow is how many characters around a term are searched for indicator phrases
	categoryWindow = 100

	// minResponsibilityLength is the shortest sentence kept as a responsibility (exclusive)
	minResponsibilityLength = 20

	DefaultMaxRequirements     = 20
	DefaultMaxResponsibilities = 8
)

var (
	paragraphSplit = regexp.MustCompile(`\n+`)
	sentenceSplit  = regexp.MustCompile(`[.!?\n]+`)
	yearsPattern   = regexp.MustCompile(`(\d+)\+?\s*years`)
)

// Extractor builds requirement models from job postings
type Extractor struct {
	normalizer          *Normalizer
	requiredIndicators  []string
	preferredIndicators []string
	responsibilityVerbs map[string]bool
	seniorPattern       *regexp.Regexp
	juniorPattern       *regexp.Regexp
	midPattern          *regexp.Regexp
	maxRequirements     int
	maxResponsibilities int
}

// ExtractorOption customizes an Extractor
type ExtractorOption func(*Extractor)

// WithMaxRequirements caps the number of requirements returned
func WithMaxRequirements(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxRequirements = n
		}
	}
}

// WithMaxResponsibilities caps the number of responsibility sentences returned
func WithMaxResponsibilities(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxResponsibilities = n
		}
	}
}

// NewExtractor creates an extractor backed by the given lexicon
func NewExtractor(lex *lexicon.Lexicon, opts ...ExtractorOption) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}

	e := &Extractor{
		normalizer:          NewNormalizer(lex.Stopwords),
		requiredIndicators:  lowerAll(lex.RequiredIndicators),
		preferredIndicators: lowerAll(lex.PreferredIndicators),
		responsibilityVerbs: lexicon.Set(lex.ResponsibilityVerbs),
		seniorPattern:       wordPattern(lex.SeniorTerms),
		juniorPattern:       wordPattern(lex.JuniorTerms),
		midPattern:          wordPattern(lex.MidTerms),
		maxRequirements:     DefaultMaxRequirements,
		maxResponsibilities: DefaultMaxResponsibilities,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalizer exposes the extractor's lexical normalizer
func (e *Extractor) Normalizer() *Normalizer {
	return e.normalizer
}

// Extract analyzes a job posting. An empty description yields no requirements,
// no responsibilities and a nil experience level.
func (e *Extractor) Extract(title, body string) types.JobAnalysis {
	if strings.TrimSpace(body) == "" {
		return types.JobAnalysis{
			Requirements:     []types.Requirement{},
			Responsibilities: []string{},
		}
	}

	level := e.DetectExperienceLevel(title + "\n" + body)
	return types.JobAnalysis{
		Requirements:     e.ExtractRequirements(title, body),
		ExperienceLevel:  &level,
		Responsibilities: e.ExtractResponsibilities(body),
	}
}

// ExtractRequirements returns the top weighted terms with their categories,
// sorted by weight descending (ties by first appearance)
func (e *Extractor) ExtractRequirements(title, body string) []types.Requirement {
	acc := NewTokenWeights()
	e.normalizer.Accumulate(acc, title, weightTitle)
	for i, para := range splitParagraphs(body) {
		weight := weightBody
		if i == 0 {
			weight = weightFirstParagraph
		}
		e.normalizer.Accumulate(acc, para, weight)
	}

	full := Fold(title + "\n" + body)
	top := acc.Top(e.maxRequirements)
	reqs := make([]types.Requirement, 0, len(top))
	for _, tw := range top {
		reqs = append(reqs, types.Requirement{
			Term:     tw.Token,
			Weight:   tw.Weight,
			Category: e.categorize(full, tw.Token),
		})
	}
	return reqs
}

// categorize inspects the text around the first occurrence of term; required wins over preferred
func (e *Extractor) categorize(fullText, term string) types.Category {
	idx := strings.Index(fullText, term)
	if idx < 0 {
		return types.CategoryGeneral
	}

	start := max(0, idx-categoryWindow)
	end := min(len(fullText), idx+len(term)+categoryWindow)
	window := fullText[start:end]

	if containsAny(window, e.requiredIndicators) {
		return types.CategoryRequired
	}
	if containsAny(window, e.preferredIndicators) {
		return types.CategoryPreferred
	}
	return types.CategoryGeneral
}

// ExtractResponsibilities returns sentences that open with an action verb
func (e *Extractor) ExtractResponsibilities(body string) []string {
	out := make([]string, 0, e.maxResponsibilities)
	for _, raw := range sentenceSplit.Split(body, -1) {
		sentence := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-*•·–"))
		if len(sentence) <= minResponsibilityLength {
			continue
		}
		if !e.responsibilityVerbs[firstWord(sentence)] {
			continue
		}
		out = append(out, sentence)
		if len(out) == e.maxResponsibilities {
			break
		}
	}
	return out
}

// DetectExperienceLevel scans for seniority terms, then for a "N years" mention.
// Defaults to Mid-Level when nothing matches.
func (e *Extractor) DetectExperienceLevel(text string) types.ExperienceLevel {
	lower := Fold(text)

	switch {
	case e.seniorPattern != nil && e.seniorPattern.MatchString(lower):
		return types.LevelSenior
	case e.juniorPattern != nil && e.juniorPattern.MatchString(lower):
		return types.LevelJunior
	case e.midPattern != nil && e.midPattern.MatchString(lower):
		return types.LevelMid
	}

	if m := yearsPattern.FindStringSubmatch(lower); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case years >= 7:
				return types.LevelSenior
			case years >= 3:
				return types.LevelMid
			default:
				return types.LevelJunior
			}
		}
	}

	return types.LevelMid
}

func splitParagraphs(body string) []string {
	parts := paragraphSplit.Split(body, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstWord(sentence string) string {
	fields := strings.Fields(strings.ToLower(sentence))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?;:()\"'")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// wordPattern compiles terms into a single whole-word alternation
func wordPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range lowerAll(terms) {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
