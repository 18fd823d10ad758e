package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-fit/internal/parsing"
)

// maxHeadingWords is the longest line still treated as a section heading
const maxHeadingWords = 5

// Document is a rendered resume reduced to what the scorer reads
type Document struct {
	PlainText string   `json:"plain_text"`
	Bullets   []string `json:"bullets"`
	// Headings are the section titles. When empty they are derived from PlainText.
	Headings []string `json:"headings,omitempty"`
}

// SectionHeadings returns the explicit headings, or ones derived from the text
func (d Document) SectionHeadings() []string {
	if len(d.Headings) > 0 {
		return d.Headings
	}
	return DeriveHeadings(d.PlainText)
}

// WordCount counts whitespace-separated words of the plain text
func (d Document) WordCount() int {
	return len(strings.Fields(d.PlainText))
}

// DeriveHeadings picks short lines that read as titles rather than sentences or
// lists: at most five words, no terminal punctuation, no comma or semicolon.
// Markdown '#', bullet marks and a trailing colon are stripped first.
func DeriveHeadings(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = stripBulletMark(line)
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
		if line == "" {
			continue
		}
		if len(strings.Fields(line)) > maxHeadingWords {
			continue
		}
		if strings.ContainsAny(line[len(line)-1:], ".!?") || strings.ContainsAny(line, ",;") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// headingMatches reports whether heading names the section: it equals name or
// starts with it followed by a non-letter ("Skills & Tools" names "skills")
func headingMatches(heading, name string) bool {
	h := strings.Join(strings.Fields(parsing.Fold(heading)), " ")
	n := strings.Join(strings.Fields(parsing.Fold(name)), " ")
	if n == "" || !strings.HasPrefix(h, n) {
		return false
	}
	if len(h) == len(n) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(h[len(n):])
	return !unicode.IsLetter(r)
}

func hasSection(headings, names []string) bool {
	for _, h := range headings {
		for _, n := range names {
			if headingMatches(h, n) {
				return true
			}
		}
	}
	return false
}

func stripBulletMark(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*•·–"))
}
