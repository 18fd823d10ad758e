package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()

	a.Stopwords[0] = "mutated"
	a.GapHints["kubernetes"] = "mutated"
	a.Synonyms[0].Aliases[0] = "mutated"

	assert.NotEqual(t, "mutated", b.Stopwords[0])
	assert.NotEqual(t, "mutated", b.GapHints["kubernetes"])
	assert.NotEqual(t, "mutated", b.Synonyms[0].Aliases[0])
	assert.NotEqual(t, "mutated", Default().Stopwords[0])
}

func TestDefault_StopwordCount(t *testing.T) {
	// roughly ninety common function words
	n := len(Set(Default().Stopwords))
	assert.GreaterOrEqual(t, n, 85)
	assert.LessOrEqual(t, n, 120)
}

func TestSet(t *testing.T) {
	set := Set([]string{" Built ", "LED", "", "built"})
	assert.Len(t, set, 2)
	assert.True(t, set["built"])
	assert.True(t, set["led"])
}

func TestSynonymGroup_Members(t *testing.T) {
	g := SynonymGroup{Canonical: "javascript", Aliases: []string{"js", "es6"}}
	assert.Equal(t, []string{"javascript", "js", "es6"}, g.Members())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), lex)
}

func TestLoad_OverlaysTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `
action_verbs: [built, shipped]
synonyms:
  - canonical: rust
    aliases: [rustlang]
gap_hints:
  rust: "Write a small CLI in Rust."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	lex, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"built", "shipped"}, lex.ActionVerbs)
	require.Len(t, lex.Synonyms, 1)
	assert.Equal(t, "rust", lex.Synonyms[0].Canonical)
	assert.Equal(t, "Write a small CLI in Rust.", lex.GapHints["rust"])
	// untouched tables keep defaults
	assert.Equal(t, Default().Stopwords, lex.Stopwords)
	assert.Contains(t, lex.GapHints, "kubernetes")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
