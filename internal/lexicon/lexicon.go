// Package lexicon holds the fixed word tables used by extraction, matching and scoring.
// Tables are plain data passed into each component so tests and deployments can swap them.
package lexicon

import "strings"

// SynonymGroup is a canonical term with its accepted aliases
type SynonymGroup struct {
	Canonical string   `mapstructure:"canonical" json:"canonical"`
	Aliases   []string `mapstructure:"aliases" json:"aliases"`
}

// Members returns the canonical term followed by its aliases
func (g SynonymGroup) Members() []string {
	out := make([]string, 0, 1+len(g.Aliases))
	out = append(out, g.Canonical)
	return append(out, g.Aliases...)
}

// Lexicon is the full set of tables
type Lexicon struct {
	Stopwords           []string          `mapstructure:"stopwords" json:"stopwords"`
	ActionVerbs         []string          `mapstructure:"action_verbs" json:"action_verbs"`
	ResponsibilityVerbs []string          `mapstructure:"responsibility_verbs" json:"responsibility_verbs"`
	RequiredIndicators  []string          `mapstructure:"required_indicators" json:"required_indicators"`
	PreferredIndicators []string          `mapstructure:"preferred_indicators" json:"preferred_indicators"`
	SeniorTerms         []string          `mapstructure:"senior_terms" json:"senior_terms"`
	JuniorTerms         []string          `mapstructure:"junior_terms" json:"junior_terms"`
	MidTerms            []string          `mapstructure:"mid_terms" json:"mid_terms"`
	ExperienceSections  []string          `mapstructure:"experience_sections" json:"experience_sections"`
	EducationSections   []string          `mapstructure:"education_sections" json:"education_sections"`
	SkillsSections      []string          `mapstructure:"skills_sections" json:"skills_sections"`
	SummarySections     []string          `mapstructure:"summary_sections" json:"summary_sections"`
	Synonyms            []SynonymGroup    `mapstructure:"synonyms" json:"synonyms"`
	GapHints            map[string]string `mapstructure:"gap_hints" json:"gap_hints"`
}

// Set builds a lowercase lookup set from a word list
func Set(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// Default returns a fresh copy of the built-in tables
func Default() *Lexicon {
	hints := make(map[string]string, len(defaultGapHints))
	for k, v := range defaultGapHints {
		hints[k] = v
	}
	groups := make([]SynonymGroup, len(defaultSynonyms))
	for i, g := range defaultSynonyms {
		groups[i] = SynonymGroup{Canonical: g.Canonical, Aliases: append([]string(nil), g.Aliases...)}
	}

	return &Lexicon{
		Stopwords:           clone(defaultStopwords),
		ActionVerbs:         clone(defaultActionVerbs),
		ResponsibilityVerbs: clone(defaultResponsibilityVerbs),
		RequiredIndicators:  clone(defaultRequiredIndicators),
		PreferredIndicators: clone(defaultPreferredIndicators),
		SeniorTerms:         []string{"senior", "lead", "principal"},
		JuniorTerms:         []string{"junior", "entry", "graduate"},
		MidTerms:            []string{"mid-level", "mid level", "intermediate"},
		ExperienceSections:  []string{"experience", "professional experience", "work experience", "employment history"},
		EducationSections:   []string{"education"},
		SkillsSections:      []string{"skills", "technical skills", "core competencies"},
		SummarySections:     []string{"summary", "professional summary", "profile", "objective"},
		Synonyms:            groups,
		GapHints:            hints,
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

var defaultStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was", "one",
	"our", "out", "has", "have", "his", "how", "its", "may", "new", "now", "old", "see", "two", "who",
	"did", "get", "got", "let", "put", "say", "she", "too", "use", "with", "this", "that", "from",
	"they", "will", "would", "there", "their", "what", "about", "which", "when", "make", "like", "time",
	"just", "him", "know", "take", "into", "year", "your", "some", "could", "them", "than", "then",
	"look", "only", "come", "over", "also", "back", "after", "work", "first", "well", "way", "even",
	"want", "because", "these", "give", "most", "such", "very", "been", "were", "being", "more",
	"other", "each", "where", "while", "should", "must", "able", "within", "across", "including",
	"team", "role", "join", "years", "experience", "required", "preferred", "plus",
}

var defaultActionVerbs = []string{
	"achieved", "accelerated", "analyzed", "architected", "automated", "built", "collaborated",
	"created", "cut", "delivered", "deployed", "designed", "developed", "drove", "engineered",
	"established", "grew", "implemented", "improved", "increased", "initiated", "launched", "led",
	"managed", "mentored", "migrated", "optimized", "orchestrated", "owned", "reduced", "refactored",
	"resolved", "scaled", "shipped", "spearheaded", "streamlined", "transformed", "won", "wrote",
}

var defaultResponsibilityVerbs = []string{
	"analyze", "build", "collaborate", "contribute", "coordinate", "create", "define", "deliver",
	"deploy", "design", "develop", "drive", "ensure", "help", "implement", "improve", "lead",
	"maintain", "manage", "mentor", "monitor", "operate", "optimize", "own", "partner", "participate",
	"provide", "research", "review", "scale", "support", "test", "work", "write",
}

var defaultRequiredIndicators = []string{
	"must", "required", "requirement", "essential", "mandatory", "minimum", "need to have", "proficiency in",
}

var defaultPreferredIndicators = []string{
	"nice to have", "nice-to-have", "preferred", "bonus", "a plus", "desirable", "ideally", "familiarity with",
}

var defaultSynonyms = []SynonymGroup{
	{Canonical: "javascript", Aliases: []string{"js", "ecmascript", "es6"}},
	{Canonical: "typescript", Aliases: []string{"ts"}},
	{Canonical: "python", Aliases: []string{"py", "python3"}},
	{Canonical: "golang", Aliases: []string{"go"}},
	{Canonical: "kubernetes", Aliases: []string{"k8s"}},
	{Canonical: "postgresql", Aliases: []string{"postgres", "psql"}},
	{Canonical: "react", Aliases: []string{"reactjs", "react.js"}},
	{Canonical: "node.js", Aliases: []string{"node", "nodejs"}},
	{Canonical: "vue", Aliases: []string{"vuejs", "vue.js"}},
	{Canonical: "aws", Aliases: []string{"amazon web services"}},
	{Canonical: "gcp", Aliases: []string{"google cloud", "google cloud platform"}},
	{Canonical: "azure", Aliases: []string{"microsoft azure"}},
	{Canonical: "ci/cd", Aliases: []string{"cicd", "continuous integration", "continuous delivery"}},
	{Canonical: "machine learning", Aliases: []string{"ml"}},
	{Canonical: "artificial intelligence", Aliases: []string{"ai"}},
	{Canonical: "c#", Aliases: []string{"csharp", "dotnet", ".net"}},
	{Canonical: "c++", Aliases: []string{"cpp"}},
	{Canonical: "docker", Aliases: []string{"containers", "containerization"}},
	{Canonical: "sql", Aliases: []string{"mysql", "postgresql", "sqlite"}},
	{Canonical: "rest", Aliases: []string{"restful", "rest api"}},
}

var defaultGapHints = map[string]string{
	"kubernetes": "Deploy a small service to a managed Kubernetes cluster and describe it as a project.",
	"docker":     "Containerize one of your existing projects and mention the Dockerfile in its description.",
	"aws":        "Host a project on AWS or list a relevant AWS certification.",
	"python":     "Add a Python script or service to your projects, such as a data pipeline or API.",
	"sql":        "Describe a project where you designed a schema or wrote non-trivial queries.",
	"testing":    "Mention the test frameworks and coverage practices you used in past roles.",
	"leadership": "Describe a time you led a project, mentored a colleague, or owned a delivery.",
}
