package lexicon

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads a lexicon file (YAML, JSON or TOML) and overlays it on the defaults.
// Tables present in the file replace the built-in table of the same name; absent tables keep defaults.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	var overlay Lexicon
	if err := v.Unmarshal(&overlay); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon file %s: %w", path, err)
	}

	overlayStrings(&lex.Stopwords, overlay.Stopwords)
	overlayStrings(&lex.ActionVerbs, overlay.ActionVerbs)
	overlayStrings(&lex.ResponsibilityVerbs, overlay.ResponsibilityVerbs)
	overlayStrings(&lex.RequiredIndicators, overlay.RequiredIndicators)
	overlayStrings(&lex.PreferredIndicators, overlay.PreferredIndicators)
	overlayStrings(&lex.SeniorTerms, overlay.SeniorTerms)
	overlayStrings(&lex.JuniorTerms, overlay.JuniorTerms)
	overlayStrings(&lex.MidTerms, overlay.MidTerms)
	overlayStrings(&lex.ExperienceSections, overlay.ExperienceSections)
	overlayStrings(&lex.EducationSections, overlay.EducationSections)
	overlayStrings(&lex.SkillsSections, overlay.SkillsSections)
	overlayStrings(&lex.SummarySections, overlay.SummarySections)
	if len(overlay.Synonyms) > 0 {
		lex.Synonyms = overlay.Synonyms
	}
	// viper lowercases map keys, which is what hint lookup expects anyway
	for term, hint := range overlay.GapHints {
		lex.GapHints[term] = hint
	}

	return lex, nil
}

func overlayStrings(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
