package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// Rule thresholds
const (
	lowMetricsScore     = 60
	lowActionVerbScore  = 70
	lowReadabilityScore = 70
	idealBulletWords    = 15
	minIdealWords       = 400
	maxIdealWords       = 800
	lowMatchPercent     = 50
	strongMatchPercent  = 80

	// prompt bounds
	maxPromptListItems = 10
	maxPromptTextChars = 200
)

// Signals is a deficiency summary the generator can turn into advice
type Signals interface {
	// Rules returns every applicable templated recommendation in priority order
	Rules() []string
	// PromptKey names the template in recommend.json
	PromptKey() string
	// PromptData returns bounded values for the prompt template
	PromptData() map[string]string
}

// ScoreSignals summarizes a document score
type ScoreSignals struct {
	ATSScore         int
	RecruiterScore   int
	KeywordCoverage  int
	SectionScore     int
	LengthScore      int
	MetricsScore     int
	ActionVerbScore  int
	ReadabilityScore int
	WordCount        int
	BulletCount      int
	AvgBulletWords   float64
	MissingKeywords  []string
	MissingSections  []string
	HasSummary       bool
}

// Rules implements Signals
func (s ScoreSignals) Rules() []string {
	var out []string

	if len(s.MissingKeywords) > 0 {
		out = append(out, fmt.Sprintf(
			"Work the missing job keywords into your resume where they truthfully apply: %s.",
			joinLimited(s.MissingKeywords, 5)))
	}
	if len(s.MissingSections) > 0 {
		out = append(out, fmt.Sprintf(
			"Add clearly labeled %s so screening software can find them.",
			sectionPhrase(s.MissingSections)))
	}
	if s.BulletCount == 0 {
		out = append(out, "Describe your experience as bullet points that start with an action verb and include a measurable result.")
	} else {
		if s.MetricsScore < lowMetricsScore {
			out = append(out, "Quantify more achievements with numbers such as percentages, revenue, users or time saved.")
		}
		if s.ActionVerbScore < lowActionVerbScore {
			out = append(out, "Start each bullet with a strong past-tense action verb such as built, led or reduced.")
		}
		if s.ReadabilityScore < lowReadabilityScore {
			if s.AvgBulletWords > idealBulletWords {
				out = append(out, fmt.Sprintf(
					"Tighten your bullets toward %d words each; they currently average %.0f.", idealBulletWords, s.AvgBulletWords))
			} else {
				out = append(out, fmt.Sprintf(
					"Expand your bullets toward %d words with context and outcome; they currently average %.0f.", idealBulletWords, s.AvgBulletWords))
			}
		}
	}
	if s.LengthScore < 100 {
		if s.WordCount < minIdealWords {
			out = append(out, fmt.Sprintf(
				"Expand the resume toward %d to %d words; it currently has %d.", minIdealWords, maxIdealWords, s.WordCount))
		} else {
			out = append(out, fmt.Sprintf(
				"Trim the resume toward %d to %d words; it currently has %d.", minIdealWords, maxIdealWords, s.WordCount))
		}
	}
	if !s.HasSummary {
		out = append(out, "Add a short professional summary at the top that names your target role and strongest skills.")
	}

	if len(out) == 0 {
		out = append(out, "Your resume is in good shape for this job; keep tailoring the summary and top bullets to each application.")
	}
	return out
}

// PromptKey implements Signals
func (s ScoreSignals) PromptKey() string { return "score_signals" }

// PromptData implements Signals
func (s ScoreSignals) PromptData() map[string]string {
	return map[string]string{
		"ATSScore":         strconv.Itoa(s.ATSScore),
		"RecruiterScore":   strconv.Itoa(s.RecruiterScore),
		"KeywordCoverage":  strconv.Itoa(s.KeywordCoverage),
		"SectionScore":     strconv.Itoa(s.SectionScore),
		"LengthScore":      strconv.Itoa(s.LengthScore),
		"MetricsScore":     strconv.Itoa(s.MetricsScore),
		"ActionVerbScore":  strconv.Itoa(s.ActionVerbScore),
		"ReadabilityScore": strconv.Itoa(s.ReadabilityScore),
		"WordCount":        strconv.Itoa(s.WordCount),
		"MissingKeywords":  promptList(s.MissingKeywords),
		"MissingSections":  promptList(s.MissingSections),
		"HasSummary":       strconv.FormatBool(s.HasSummary),
	}
}

// MatchSignals summarizes a profile match
type MatchSignals struct {
	MatchPercent   int
	DirectCount    int
	Partial        []types.MatchItem
	RequiredGaps   []types.MatchItem
	OtherGaps      []types.MatchItem
	ProfileExcerpt string
}

// NewMatchSignals splits the gaps of result by the category of their requirement
func NewMatchSignals(matchPercent int, direct, partial, gaps []types.MatchItem, reqs []types.Requirement) MatchSignals {
	categories := make(map[string]types.Category, len(reqs))
	for _, r := range reqs {
		categories[r.Term] = r.Category
	}

	sig := MatchSignals{
		MatchPercent: matchPercent,
		DirectCount:  len(direct),
		Partial:      partial,
	}
	for _, g := range gaps {
		if categories[g.Term] == types.CategoryRequired {
			sig.RequiredGaps = append(sig.RequiredGaps, g)
		} else {
			sig.OtherGaps = append(sig.OtherGaps, g)
		}
	}
	return sig
}

// Rules implements Signals
func (s MatchSignals) Rules() []string {
	var out []string

	for _, g := range s.RequiredGaps {
		out = append(out, strings.TrimSpace(fmt.Sprintf("%s is required for this role. %s", displayTerm(g.Term), g.Suggestion)))
	}
	for _, p := range s.Partial {
		out = append(out, fmt.Sprintf(
			"Use the job's exact wording %q in your profile; it currently shows only a related term (%s).", p.Term, p.Evidence))
	}
	if len(s.OtherGaps) > 0 {
		terms := make([]string, len(s.OtherGaps))
		for i, g := range s.OtherGaps {
			terms[i] = g.Term
		}
		out = append(out, fmt.Sprintf("If you have experience with %s, mention it in a project or role description.", joinLimited(terms, 5)))
	}
	switch {
	case s.MatchPercent < lowMatchPercent:
		out = append(out, fmt.Sprintf(
			"Your profile covers %d%% of this job's requirements; close the required gaps before applying.", s.MatchPercent))
	case s.MatchPercent >= strongMatchPercent:
		out = append(out, fmt.Sprintf(
			"Strong match at %d%%; lead your resume with the skills that matched directly.", s.MatchPercent))
	}

	if len(out) == 0 {
		out = append(out, fmt.Sprintf(
			"Your profile covers %d%% of this job's requirements; strengthen the evidence behind your matched skills.", s.MatchPercent))
	}
	return out
}

// PromptKey implements Signals
func (s MatchSignals) PromptKey() string { return "match_signals" }

// PromptData implements Signals
func (s MatchSignals) PromptData() map[string]string {
	partials := make([]string, len(s.Partial))
	for i, p := range s.Partial {
		partials[i] = p.Term
	}
	return map[string]string{
		"MatchPercent":   strconv.Itoa(s.MatchPercent),
		"DirectCount":    strconv.Itoa(s.DirectCount),
		"PartialCount":   strconv.Itoa(len(s.Partial)),
		"GapCount":       strconv.Itoa(len(s.RequiredGaps) + len(s.OtherGaps)),
		"RequiredGaps":   promptList(itemTerms(s.RequiredGaps)),
		"Partials":       promptList(partials),
		"OtherGaps":      promptList(itemTerms(s.OtherGaps)),
		"ProfileExcerpt": truncate(s.ProfileExcerpt, maxPromptTextChars),
	}
}

func itemTerms(items []types.MatchItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Term
	}
	return out
}

func promptList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	if len(items) > maxPromptListItems {
		items = items[:maxPromptListItems]
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = truncate(it, maxPromptTextChars)
	}
	return strings.Join(out, ", ")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// joinLimited lists up to n items and summarizes the rest
func joinLimited(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:n], ", "), len(items)-n)
}

func sectionPhrase(sections []string) string {
	if len(sections) == 1 {
		return sections[0] + " section"
	}
	return strings.Join(sections[:len(sections)-1], ", ") + " and " + sections[len(sections)-1] + " sections"
}

func displayTerm(term string) string {
	if term == "" {
		return term
	}
	r := []rune(term)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
