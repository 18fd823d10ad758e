package parsing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/resume-fit/internal/lexicon"
)

// minTokenLength is the shortest token kept by the normalizer (tokens of length <= 2 are dropped)
const minTokenLength = 3

var nonWordPattern = regexp.MustCompile(`\W+`)

// Fold lowercases text and strips diacritics so "Résumé" and "resume" compare equal
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Normalizer tokenizes free text into weighted keyword counts
type Normalizer struct {
	stopwords map[string]bool
}

// NewNormalizer creates a normalizer using the given stopword table
func NewNormalizer(stopwords []string) *Normalizer {
	return &Normalizer{stopwords: lexicon.Set(stopwords)}
}

// Tokenize lowercases text, replaces non-word characters with whitespace and
// drops short tokens and stopwords. Order of appearance is preserved.
func (n *Normalizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	fields := strings.Fields(nonWordPattern.ReplaceAllString(Fold(text), " "))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength || n.stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Normalize returns a fresh token -> weight mapping where every surviving token
// of text contributes weight once per occurrence.
func (n *Normalizer) Normalize(text string, weight int) *TokenWeights {
	acc := NewTokenWeights()
	n.Accumulate(acc, text, weight)
	return acc
}

// Accumulate adds weight to acc for each surviving token of text
func (n *Normalizer) Accumulate(acc *TokenWeights, text string, weight int) {
	if weight < 0 {
		panic(fmt.Sprintf("parsing: negative token weight %d", weight))
	}
	for _, tok := range n.Tokenize(text) {
		acc.Add(tok, weight)
	}
}

// TokenWeight is a token with its accumulated weight
type TokenWeight struct {
	Token  string
	Weight int
}

// TokenWeights accumulates weights per token and remembers first-seen order
type TokenWeights struct {
	order   []string
	weights map[string]int
}

// NewTokenWeights creates an empty accumulator
func NewTokenWeights() *TokenWeights {
	return &TokenWeights{weights: make(map[string]int)}
}

// Add adds weight to token, registering it on first sight
func (tw *TokenWeights) Add(token string, weight int) {
	if _, seen := tw.weights[token]; !seen {
		tw.order = append(tw.order, token)
	}
	tw.weights[token] += weight
}

// Weight returns the accumulated weight of token (0 if never seen)
func (tw *TokenWeights) Weight(token string) int {
	return tw.weights[token]
}

// Len returns the number of distinct tokens
func (tw *TokenWeights) Len() int {
	return len(tw.order)
}

// Tokens returns the distinct tokens in first-seen order
func (tw *TokenWeights) Tokens() []string {
	return append([]string(nil), tw.order...)
}

// Map returns a copy of the token -> weight mapping
func (tw *TokenWeights) Map() map[string]int {
	out := make(map[string]int, len(tw.weights))
	for k, v := range tw.weights {
		out[k] = v
	}
	return out
}

// Top returns at most n tokens sorted by weight descending, ties broken by first-seen order
func (tw *TokenWeights) Top(n int) []TokenWeight {
	all := make([]TokenWeight, len(tw.order))
	for i, tok := range tw.order {
		all[i] = TokenWeight{Token: tok, Weight: tw.weights[tok]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Weight > all[j].Weight
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
