// Package scoring rates a rendered resume for automated screening (ATS) and for
// human-reviewer appeal. Scoring is a pure function of the document and the
// requirement model.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/types"
)

const (
	// Length band in words
	minIdealWords = 400
	maxIdealWords = 800
	wordsPerPoint = 10

	// sectionPenalty is subtracted per missing core section
	sectionPenalty = 20

	// pointsPerMetricBullet saturates metricsScore at 13 quantified bullets
	pointsPerMetricBullet = 8

	idealBulletWords      = 15
	pointsPerWordOffIdeal = 2

	// formatScore is constant: layout compliance is the renderer's job
	formatScore = 100
)

// Composite weights
const (
	weightKeywordCoverage = 0.4
	weightFormat          = 0.2
	weightSection         = 0.2
	weightLength          = 0.2

	weightMetrics     = 0.4
	weightActionVerb  = 0.3
	weightReadability = 0.3
)

var digitPattern = regexp.MustCompile(`\d`)

// Section names reported as missing
const (
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
)

// Scorer computes ScoreResults
type Scorer struct {
	actionVerbs        map[string]bool
	sections           []section
	summarySections    []string
	maxRecommendations int
}

type section struct {
	name    string
	aliases []string
}

// Option configures a Scorer
type Option func(*Scorer)

// WithMaxRecommendations caps the templated recommendations attached to a result
func WithMaxRecommendations(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// NewScorer creates a scorer backed by the lexicon's verb and section tables
func NewScorer(lex *lexicon.Lexicon, opts ...Option) *Scorer {
	if lex == nil {
		lex = lexicon.Default()
	}

	s := &Scorer{
		actionVerbs: lexicon.Set(lex.ActionVerbs),
		sections: []section{
			{name: SectionExperience, aliases: lex.ExperienceSections},
			{name: SectionEducation, aliases: lex.EducationSections},
			{name: SectionSkills, aliases: lex.SkillsSections},
		},
		summarySections:    lex.SummarySections,
		maxRecommendations: recommend.MaxRecommendations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score scores plain text and bullets against reqs, deriving headings from the text
func (s *Scorer) Score(plainText string, bullets []string, reqs []types.Requirement) types.ScoreResult {
	return s.ScoreDocument(Document{PlainText: plainText, Bullets: bullets}, reqs)
}

// ScoreDocument scores a document against reqs
func (s *Scorer) ScoreDocument(doc Document, reqs []types.Requirement) types.ScoreResult {
	result, _ := s.Analyze(doc, reqs)
	return result
}

// Analyze returns the score together with the signals its recommendations were built from
func (s *Scorer) Analyze(doc Document, reqs []types.Requirement) (types.ScoreResult, recommend.ScoreSignals) {
	bullets := cleanBullets(doc.Bullets)
	headings := doc.SectionHeadings()
	words := doc.WordCount()

	coverage, missing := KeywordCoverage(doc.PlainText, reqs)
	sectionScore, missingSections := s.sectionScore(headings)
	readability, avgWords := ReadabilityScore(bullets)

	ats := types.ATSBreakdown{
		KeywordCoverage: coverage,
		FormatScore:     formatScore,
		SectionScore:    sectionScore,
		LengthScore:     LengthScore(words),
	}
	reviewer := types.ReviewerBreakdown{
		MetricsScore:     MetricsScore(bullets),
		ActionVerbScore:  s.ActionVerbScore(bullets),
		ReadabilityScore: readability,
	}

	result := types.ScoreResult{
		ATSScore:        ATSComposite(ats),
		RecruiterScore:  RecruiterComposite(reviewer),
		Breakdown:       types.ScoreBreakdown{ATS: ats, Reviewer: reviewer},
		MissingKeywords: missing,
	}

	sig := recommend.ScoreSignals{
		ATSScore:         result.ATSScore,
		RecruiterScore:   result.RecruiterScore,
		KeywordCoverage:  ats.KeywordCoverage,
		SectionScore:     ats.SectionScore,
		LengthScore:      ats.LengthScore,
		MetricsScore:     reviewer.MetricsScore,
		ActionVerbScore:  reviewer.ActionVerbScore,
		ReadabilityScore: reviewer.ReadabilityScore,
		WordCount:        words,
		BulletCount:      len(bullets),
		AvgBulletWords:   avgWords,
		MissingKeywords:  missing,
		MissingSections:  missingSections,
		HasSummary:       hasSection(headings, s.summarySections),
	}
	result.Recommendations = recommend.Deterministic(sig, s.maxRecommendations)
	return result, sig
}

func (s *Scorer) sectionScore(headings []string) (int, []string) {
	score := 100
	missing := []string{}
	for _, sec := range s.sections {
		names := append([]string{sec.name}, sec.aliases...)
		if !hasSection(headings, names) {
			score -= sectionPenalty
			missing = append(missing, sec.name)
		}
	}
	return max(0, score), missing
}

// KeywordCoverage returns the weighted percentage of requirement terms found in
// text and the missing terms by descending weight. No requirements (or zero
// total weight) counts as full coverage.
func KeywordCoverage(text string, reqs []types.Requirement) (int, []string) {
	missing := []string{}
	if len(reqs) == 0 {
		return 100, missing
	}

	h := parsing.NewHaystack(text)
	matchedWeight := 0
	var missed []types.Requirement
	for _, r := range reqs {
		if h.Contains(r.Term) {
			matchedWeight += r.Weight
		} else {
			missed = append(missed, r)
		}
	}

	sort.SliceStable(missed, func(i, j int) bool {
		return missed[i].Weight > missed[j].Weight
	})
	for _, r := range missed {
		missing = append(missing, r.Term)
	}

	total := types.TotalWeight(reqs)
	if total == 0 {
		return 100, missing
	}
	return percent(float64(matchedWeight), float64(total)), missing
}

// LengthScore is 100 inside the 400-800 word band and loses one point per
// whole 10 words outside it. An empty document scores 0.
func LengthScore(words int) int {
	switch {
	case words <= 0:
		return 0
	case words < minIdealWords:
		return max(0, 100-(minIdealWords-words)/wordsPerPoint)
	case words > maxIdealWords:
		return max(0, 100-(words-maxIdealWords)/wordsPerPoint)
	default:
		return 100
	}
}

// MetricsScore rewards bullets that contain a number
func MetricsScore(bullets []string) int {
	quantified := 0
	for _, b := range bullets {
		if digitPattern.MatchString(b) {
			quantified++
		}
	}
	return min(100, pointsPerMetricBullet*quantified)
}

// ActionVerbScore is the percentage of bullets opening with a known action verb
func (s *Scorer) ActionVerbScore(bullets []string) int {
	if len(bullets) == 0 {
		return 0
	}
	strong := 0
	for _, b := range bullets {
		if s.actionVerbs[firstWord(b)] {
			strong++
		}
	}
	return percent(float64(strong), float64(len(bullets)))
}

// ReadabilityScore penalizes average bullet length away from 15 words.
// It also returns the average; no bullets scores 100.
func ReadabilityScore(bullets []string) (int, float64) {
	if len(bullets) == 0 {
		return 100, 0
	}
	words := 0
	for _, b := range bullets {
		words += len(strings.Fields(b))
	}
	avg := float64(words) / float64(len(bullets))
	score := 100 - pointsPerWordOffIdeal*math.Abs(avg-idealBulletWords)
	return clamp(int(math.Round(score))), avg
}

// ATSComposite weights the screening sub-scores
func ATSComposite(b types.ATSBreakdown) int {
	return clamp(int(math.Round(
		weightKeywordCoverage*float64(b.KeywordCoverage) +
			weightFormat*float64(b.FormatScore) +
			weightSection*float64(b.SectionScore) +
			weightLength*float64(b.LengthScore))))
}

// RecruiterComposite weights the reviewer sub-scores
func RecruiterComposite(b types.ReviewerBreakdown) int {
	return clamp(int(math.Round(
		weightMetrics*float64(b.MetricsScore) +
			weightActionVerb*float64(b.ActionVerbScore) +
			weightReadability*float64(b.ReadabilityScore))))
}

func cleanBullets(bullets []string) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if b = stripBulletMark(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func firstWord(text string) string {
	fields := strings.Fields(parsing.Fold(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?;:()\"'")
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return clamp(int(math.Round(100 * part / whole)))
}

func clamp(v int) int {
	return min(100, max(0, v))
}
