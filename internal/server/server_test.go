package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/server/ratelimit"
	"github.com/jonathan/resume-fit/internal/types"
)

type memStore struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*types.AnalysisRecord
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{analyses: make(map[uuid.UUID]*types.AnalysisRecord)}
}

func (m *memStore) SaveJobAnalysis(_ context.Context, title, _ string, analysis *types.JobAnalysis) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.analyses[id] = &types.AnalysisRecord{ID: id, Title: title, Analysis: *analysis}
	return id, nil
}

func (m *memStore) GetJobAnalysis(_ context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyses[id], nil
}

func (m *memStore) SaveMatchResult(context.Context, *uuid.UUID, *types.MatchResult) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *memStore) SaveScoreResult(context.Context, *uuid.UUID, *types.ScoreResult) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func newTestServer(t *testing.T, store *memStore, cfg Config) *Server {
	t.Helper()
	var svc *pipeline.Service
	var opts []Option
	if store != nil {
		svc = pipeline.NewService(pipeline.WithStore(store))
		opts = append(opts, WithHealthCheck(store))
	} else {
		svc = pipeline.NewService()
	}
	s := New(cfg, svc, opts...)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const postingBody = "We are hiring a backend engineer. Python required.\n" +
	"lorem ipsum dolor sit amet lorem ipsum dolor sit amet lorem ipsum dolor sit amet lorem ipsum dolor sit amet lorem ipsum dolor sit amet\n" +
	"Kubernetes preferred."

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Store: "disabled"}, decode[HealthResponse](t, rec))

	store := newMemStore()
	s = newTestServer(t, store, Config{})
	assert.Equal(t, "ok", decode[HealthResponse](t, do(t, s, http.MethodGet, "/health", nil)).Store)

	store.pingErr = errors.New("down")
	rec = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[HealthResponse](t, rec).Store)
}

func TestAnalyze_Body(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{Title: "Backend Engineer", Body: postingBody})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[pipeline.Analysis](t, rec)
	assert.Nil(t, out.ID)
	categories := make(map[string]types.Category)
	for _, r := range out.Requirements {
		categories[r.Term] = r.Category
	}
	assert.Equal(t, types.CategoryRequired, categories["python"])
	assert.Equal(t, types.CategoryPreferred, categories["kubernetes"])
}

func TestAnalyze_HTMLAndURL(t *testing.T) {
	page := `<html><head><title>Jobs</title></head><body><div class="job-description"><h1>Data Engineer</h1><p>SQL required. Build pipelines with Spark.</p></div></body></html>`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer upstream.Close()

	s := newTestServer(t, nil, Config{AllowPrivateFetch: true})
	for name, req := range map[string]AnalyzeRequest{
		"html": {HTML: page},
		"url":  {URL: upstream.URL},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/analyze", req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			terms := make([]string, 0)
			for _, r := range decode[pipeline.Analysis](t, rec).Requirements {
				terms = append(terms, r.Term)
			}
			assert.Contains(t, terms, "sql")
			assert.Contains(t, terms, "data", "title terms are included")
		})
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failing.Close()
	s := newTestServer(t, nil, Config{AllowPrivateFetch: true})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed json", "{", http.StatusBadRequest},
		{"no posting", AnalyzeRequest{}, http.StatusBadRequest},
		{"bad url", AnalyzeRequest{URL: "ftp://example.com"}, http.StatusBadRequest},
		{"upstream failure", AnalyzeRequest{URL: failing.URL}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestAnalyze_RefusesPrivateAddresses(t *testing.T) {
	hit := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
		_, _ = w.Write([]byte("<html><body><p>Go required.</p></body></html>"))
	}))
	defer upstream.Close()

	s := newTestServer(t, nil, Config{FetchTimeout: time.Second})
	for _, target := range []string{upstream.URL, "http://169.254.169.254/latest/meta-data/"} {
		rec := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{URL: target})
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "not publicly routable")
	}
	assert.False(t, hit)
}

func TestAnalyses_StoredRoundTrip(t *testing.T) {
	s := newTestServer(t, newMemStore(), Config{})

	rec := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{Title: "Backend Engineer", Body: postingBody})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[pipeline.Analysis](t, rec)
	require.NotNil(t, created.ID)

	rec = do(t, s, http.MethodGet, "/analyses/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[types.AnalysisRecord](t, rec)
	assert.Equal(t, "Backend Engineer", record.Title)
	assert.Equal(t, created.Requirements, record.Analysis.Requirements)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/analyses/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/analyses/not-a-uuid", nil).Code)

	rec = do(t, s, http.MethodPost, "/match", pipeline.MatchRequest{AnalysisID: created.ID, Skills: []string{"Python"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	match := decode[pipeline.Match](t, rec)
	assert.NotNil(t, match.ID)
	assert.Equal(t, len(created.Requirements), match.Total())
}

func TestAnalyses_NoStore(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodGet, "/analyses/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMatch(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodPost, "/match", pipeline.MatchRequest{
		Requirements: []types.Requirement{
			{Term: "py", Weight: 2, Category: types.CategoryRequired},
			{Term: "terraform", Weight: 1, Category: types.CategoryPreferred},
		},
		Skills: []string{"Python"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[pipeline.Match](t, rec)
	require.Len(t, out.Partial, 1)
	assert.Equal(t, "py", out.Partial[0].Term)
	require.Len(t, out.Gap, 1)
	assert.NotEmpty(t, out.Gap[0].Suggestion)
}

func TestMatch_InvalidRequirement(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodPost, "/match", pipeline.MatchRequest{
		Requirements: []types.Requirement{{Term: "go", Weight: -1, Category: types.CategoryRequired}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Weight")
}

func TestScore_HTML(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	html := `<h2>Experience</h2><ul><li>Built 3 Python services</li><li>Led migration to Kubernetes</li></ul><h2>Education</h2><p>BSc</p><h2>Skills</h2><p>Python</p>`
	rec := do(t, s, http.MethodPost, "/score", ScoreBody{
		ScoreRequest: pipeline.ScoreRequest{Requirements: []types.Requirement{
			{Term: "python", Weight: 1, Category: types.CategoryRequired},
			{Term: "aws", Weight: 1, Category: types.CategoryRequired},
		}},
		HTML: html,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[pipeline.Score](t, rec)
	assert.Equal(t, 100, out.Breakdown.ATS.SectionScore)
	assert.Equal(t, 50, out.Breakdown.ATS.KeywordCoverage)
	assert.Equal(t, []string{"aws"}, out.MissingKeywords)
	assert.Equal(t, 8, out.Breakdown.Reviewer.MetricsScore)
}

func TestScoreBatch(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	reqs := []types.Requirement{
		{Term: "python", Weight: 1, Category: types.CategoryRequired},
		{Term: "aws", Weight: 1, Category: types.CategoryRequired},
	}

	rec := do(t, s, http.MethodPost, "/score/batch", ScoreBatchBody{
		ScoreBatchRequest: pipeline.ScoreBatchRequest{
			Requirements: reqs,
			Documents: []scoring.Document{
				{PlainText: "Experience\nBuilt Python and AWS services", Bullets: []string{"Built 4 Python services on AWS"}},
			},
		},
		HTML: []string{`<h2>Experience</h2><ul><li>Built Python tools</li></ul>`},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[ScoreBatchResponse](t, rec)
	require.Len(t, out.Results, 2)
	assert.Empty(t, out.Results[0].MissingKeywords)
	assert.Equal(t, []string{"aws"}, out.Results[1].MissingKeywords, "HTML documents follow the structured ones")
}

func TestScoreBatch_BadRequests(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	tests := []struct {
		name string
		body ScoreBatchBody
	}{
		{"no documents", ScoreBatchBody{}},
		{"too many documents", ScoreBatchBody{ScoreBatchRequest: pipeline.ScoreBatchRequest{
			Documents: make([]scoring.Document, maxBatchDocuments+1),
		}}},
		{"negative weight", ScoreBatchBody{ScoreBatchRequest: pipeline.ScoreBatchRequest{
			Requirements: []types.Requirement{{Term: "go", Weight: -1, Category: types.CategoryRequired}},
			Documents:    []scoring.Document{{PlainText: "go"}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/score/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodPost, "/evaluate", EvaluateRequest{
		Requirements: []types.Requirement{{Term: "python", Weight: 1, Category: types.CategoryRequired}},
		Skills:       []string{"Python"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[EvaluateResponse](t, rec)
	require.NotNil(t, out.Match)
	require.NotNil(t, out.Score)
	assert.Equal(t, 100, out.Match.MatchPercent)
	assert.Equal(t, []string{"python"}, out.Score.MissingKeywords)
	assert.Equal(t, 0, out.Score.Breakdown.ATS.LengthScore)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil, Config{RateLimit: ratelimit.Settings{Enabled: true}})
	body := EvaluateRequest{Skills: []string{"Go"}}

	// a burst of ten model tokens covers five evaluations at two each
	for i := 0; i < 5; i++ {
		rec := do(t, s, http.MethodPost, "/evaluate", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := do(t, s, http.MethodPost, "/evaluate", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, rec)["error"])

	rec = do(t, s, http.MethodPost, "/match", pipeline.MatchRequest{Skills: []string{"Go"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "match shares the model budget")

	rec = do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{Title: "Backend Engineer", Body: postingBody})
	assert.Equal(t, http.StatusOK, rec.Code, "analyze is metered separately")
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodGet, "/health", nil)
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil, Config{})

	rec := do(t, s, http.MethodOptions, "/score", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
