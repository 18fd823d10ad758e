// Package ingestion turns raw job postings and rendered resumes (plain text or
// HTML) into the clean text the analyzers read.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bulletStart = regexp.MustCompile(`^\s*(?:[-*•·–]|\d+[.)])\s+`)
)

// CleanText normalizes line endings and whitespace while keeping the line
// structure (paragraphs, headings and bullets) the extractor depends on
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	// Markdown headings are kept verbatim
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	return innerSpace.ReplaceAllString(trimmed, " ")
}

// IsBulletLine reports whether a line is an itemized entry ("- ", "* ", "• ", "1. ")
func IsBulletLine(line string) bool {
	return bulletStart.MatchString(line)
}

// ExtractBullets returns the itemized lines of text with their markers removed
func ExtractBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if !IsBulletLine(line) {
			continue
		}
		if b := strings.TrimSpace(bulletStart.ReplaceAllString(line, "")); b != "" {
			bullets = append(bullets, b)
		}
	}
	return bullets
}

// SplitTitle uses the first non-empty line as the title when none was given
func SplitTitle(text string) (string, string) {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(strings.TrimLeft(first, "# ")), strings.TrimSpace(rest)
}
