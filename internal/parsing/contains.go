package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Haystack is text prepared for repeated whole-term lookups
type Haystack struct {
	folded string
}

// NewHaystack folds text once so many terms can be tested against it
func NewHaystack(text string) Haystack {
	return Haystack{folded: Fold(text)}
}

// Contains reports whether term occurs in the text as a whole term: case- and
// accent-insensitive, and not glued to a neighbouring letter or digit.
// "py" is therefore not found inside "python".
func (h Haystack) Contains(term string) bool {
	needle := Fold(strings.TrimSpace(term))
	if needle == "" {
		return false
	}

	offset := 0
	for {
		idx := strings.Index(h.folded[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if boundaryBefore(h.folded, start) && boundaryAfter(h.folded, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(h.folded[start:])
		offset = start + size
	}
}

// ContainsTerm is a one-shot whole-term lookup
func ContainsTerm(text, term string) bool {
	return NewHaystack(text).Contains(term)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isTermRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isTermRune(r)
}

func isTermRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
