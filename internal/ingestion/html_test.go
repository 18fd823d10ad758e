package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greenhouseLikePosting = `<html>
<head><title>Careers | Backend Engineer</title><style>.x{}</style></head>
<body>
<nav>Home | Jobs | About</nav>
<div class="job-description">
  <h1>Backend Engineer</h1>
  <p>We are hiring a backend engineer. Python required.</p>
  <ul><li>Design and build scalable APIs</li><li>Maintain CI pipelines</li></ul>
  <p>Kubernetes preferred.</p>
</div>
<footer>© Acme</footer>
<script>track()</script>
</body></html>`

func TestParseJobHTML(t *testing.T) {
	title, body, err := ParseJobHTML(greenhouseLikePosting)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", title)
	lines := strings.Split(body, "\n")
	assert.Equal(t, "We are hiring a backend engineer. Python required.", lines[0])
	assert.Contains(t, body, "Design and build scalable APIs\n")
	assert.Contains(t, body, "Kubernetes preferred.")
	assert.NotContains(t, body, "Home | Jobs")
	assert.NotContains(t, body, "track()")
	assert.NotContains(t, body, "Acme")
	assert.NotContains(t, body, "Backend Engineer", "title is not repeated in the body")
}

func TestParseJobHTML_TitleFallbackAndBody(t *testing.T) {
	title, body, err := ParseJobHTML(`<html><head><title> Data  Analyst </title></head><body><p>SQL and dashboards.</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Data Analyst", title)
	assert.Equal(t, "SQL and dashboards.", body)
}

func TestParseDocumentHTML(t *testing.T) {
	html := `<html><body>
<h1>Jane Doe</h1>
<h2>Summary</h2><p>Platform engineer focused on reliability.</p>
<h2>Experience</h2>
<ul>
  <li>Reduced deploy time by 40%</li>
  <li>  Led   a team of 4 engineers </li>
</ul>
<h2>Skills</h2><p>Go, Kubernetes, PostgreSQL</p>
</body></html>`

	doc, err := ParseDocumentHTML(html)
	require.NoError(t, err)

	assert.Equal(t, []string{"Reduced deploy time by 40%", "Led a team of 4 engineers"}, doc.Bullets)
	assert.Equal(t, []string{"Jane Doe", "Summary", "Experience", "Skills"}, doc.Headings)
	assert.Contains(t, doc.PlainText, "Platform engineer focused on reliability.")
	assert.Contains(t, doc.PlainText, "Go, Kubernetes, PostgreSQL")
	assert.NotContains(t, doc.PlainText, "<li>")
}

func TestParseDocumentHTML_Fragment(t *testing.T) {
	doc, err := ParseDocumentHTML(`<ul><li>Built X</li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Built X"}, doc.Bullets)
	assert.Empty(t, doc.Headings)
}
