package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-fit/internal/scoring"
)

// noiseSelector matches page chrome that never belongs to a posting or resume
const noiseSelector = "nav, footer, header, script, style, noscript, form, iframe, svg, .cookie-banner, .popup, .apply-button, .share"

// jobContentSelectors locate the posting body on common job boards, most specific first
var jobContentSelectors = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
	".content",
}

// blockSelector lists elements rendered on their own line
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, div, section, tr, br, dt, dd"

// ParseJobHTML extracts a posting title and body text from an HTML page.
// The title comes from the first <h1>, falling back to <title>.
func ParseJobHTML(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := collapse(doc.Find("h1").First().Text())
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	var content *goquery.Selection
	for _, sel := range jobContentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	// the title is passed separately so it is not counted twice
	content.Find("h1").Remove()
	return title, CleanText(blockText(content)), nil
}

// ParseDocumentHTML reduces a rendered resume to plain text, bullets (<li>) and
// section headings (<h1>..<h4>)
func ParseDocumentHTML(html string) (scoring.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scoring.Document{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var out scoring.Document
	body.Find("li").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			out.Bullets = append(out.Bullets, t)
		}
	})
	body.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			out.Headings = append(out.Headings, t)
		}
	})
	out.PlainText = CleanText(blockText(body))
	return out, nil
}

// blockText renders a selection as text with one line per block element
func blockText(s *goquery.Selection) string {
	clone := s.Clone()
	clone.Find(blockSelector).Each(func(_ int, b *goquery.Selection) {
		b.AppendHtml("\n")
	})
	return clone.Text()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
