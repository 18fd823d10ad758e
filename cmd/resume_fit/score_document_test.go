package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/types"
)

const resumeMarkdown = `# Jane Doe

## Summary
Backend engineer focused on reliable services.

## Experience
- Built 12 Python services handling 3M requests per day
- Led migration of batch jobs to Kubernetes

## Education
BSc Computer Science

## Skills
Python, Kubernetes
`

func TestScoreDocumentCommand_Markdown(t *testing.T) {
	in := writeTemp(t, "resume.md", resumeMarkdown)
	reqs := writeTemp(t, "requirements.json", requirementsJSON)

	stdout, _, err := execute(t, "", "score-document", "--in", in, "--requirements", reqs, "--validate")
	require.NoError(t, err)

	var out pipeline.Score
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 100, out.Breakdown.ATS.SectionScore)
	assert.Equal(t, []string{"terraform"}, out.MissingKeywords)
	assert.Equal(t, 8, out.Breakdown.Reviewer.MetricsScore, "one of two bullets has a number")
	assert.LessOrEqual(t, len(out.Recommendations), 5)
}

func TestScoreDocumentCommand_HTML(t *testing.T) {
	reqs := writeTemp(t, "requirements.json", requirementsJSON)
	html := `<h2>Experience</h2><ul><li>Built 3 Terraform modules</li></ul><h2>Education</h2><p>BSc</p><h2>Skills</h2><p>Python</p>`

	stdout, _, err := execute(t, html, "score-document", "--in", "-", "--html", "-r", reqs)
	require.NoError(t, err)

	var out pipeline.Score
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, []string{"kubernetes"}, out.MissingKeywords)
	assert.Equal(t, 100, out.Breakdown.ATS.SectionScore)
}

func TestScoreDocumentCommand_RequiresInput(t *testing.T) {
	_, _, err := execute(t, "", "score-document", "-r", "requirements.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
}

func TestScoreDocumentCommand_Batch(t *testing.T) {
	reqs := writeTemp(t, "requirements.json", requirementsJSON)
	full := writeTemp(t, "full.md", resumeMarkdown)
	html := `<h2>Experience</h2><ul><li>Built 3 Terraform modules</li></ul><h2>Education</h2><p>BSc</p><h2>Skills</h2><p>Python</p>`

	stdout, _, err := execute(t, "", "score-document", "--in", full, "--in", writeTemp(t, "thin.md", "Skills\nPython"), "-r", reqs, "--validate")
	require.NoError(t, err)

	var out []types.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out, 2)
	assert.Equal(t, []string{"terraform"}, out[0].MissingKeywords)
	assert.Equal(t, []string{"kubernetes", "terraform"}, out[1].MissingKeywords)
	assert.Greater(t, out[0].ATSScore, out[1].ATSScore, "results keep input order")

	stdout, _, err = execute(t, html, "score-document", "--in", "-", "--in", full, "--html", "-r", reqs)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out, 2)
	assert.Equal(t, []string{"kubernetes"}, out[0].MissingKeywords)
}

func TestScoreDocumentCommand_StdinOnce(t *testing.T) {
	reqs := writeTemp(t, "requirements.json", requirementsJSON)

	_, _, err := execute(t, "x", "score-document", "--in", "-", "--in", "-", "-r", reqs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only once")
}
