package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

type memStore struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*types.AnalysisRecord
	matches  map[uuid.UUID]types.MatchResult
	scores   map[uuid.UUID]types.ScoreResult
	links    map[uuid.UUID]*uuid.UUID
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		analyses: make(map[uuid.UUID]*types.AnalysisRecord),
		matches:  make(map[uuid.UUID]types.MatchResult),
		scores:   make(map[uuid.UUID]types.ScoreResult),
		links:    make(map[uuid.UUID]*uuid.UUID),
	}
}

func (m *memStore) SaveJobAnalysis(_ context.Context, title, _ string, analysis *types.JobAnalysis) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.analyses[id] = &types.AnalysisRecord{ID: id, Title: title, Analysis: *analysis}
	return id, nil
}

func (m *memStore) GetJobAnalysis(_ context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyses[id], nil
}

func (m *memStore) SaveMatchResult(_ context.Context, analysisID *uuid.UUID, result *types.MatchResult) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.matches[id] = *result
	m.links[id] = analysisID
	return id, nil
}

func (m *memStore) SaveScoreResult(_ context.Context, analysisID *uuid.UUID, result *types.ScoreResult) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.scores[id] = *result
	m.links[id] = analysisID
	return id, nil
}

type cannedClient struct {
	response string
	err      error
	calls    atomic.Int32
}

func (c *cannedClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	c.calls.Add(1)
	return c.response, c.err
}

func (c *cannedClient) GetModel(_ llm.ModelTier) string { return "canned" }

func (c *cannedClient) Close() error { return nil }

var backendPosting = "We are hiring a backend engineer. Python required.\n" +
	strings.Repeat("lorem ipsum dolor sit amet ", 5) + "\nKubernetes preferred."

func requirementsOf(terms ...string) []types.Requirement {
	reqs := make([]types.Requirement, 0, len(terms))
	for i, term := range terms {
		reqs = append(reqs, types.Requirement{Term: term, Weight: len(terms) - i, Category: types.CategoryRequired})
	}
	return reqs
}

func TestAnalyzeJobPosting(t *testing.T) {
	store := newMemStore()
	svc := NewService(WithStore(store))

	out, err := svc.AnalyzeJobPosting(context.Background(), "Backend Engineer", backendPosting)
	require.NoError(t, err)
	require.NotNil(t, out.ID)

	categories := make(map[string]types.Category)
	for _, r := range out.Requirements {
		categories[r.Term] = r.Category
	}
	assert.Equal(t, types.CategoryRequired, categories["python"])
	assert.Equal(t, types.CategoryPreferred, categories["kubernetes"])

	stored, err := svc.Analysis(context.Background(), *out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", stored.Title)
	assert.Equal(t, out.Requirements, stored.Analysis.Requirements)
}

func TestAnalyzeJobPosting_EmptyBody(t *testing.T) {
	svc := NewService()

	out, err := svc.AnalyzeJobPosting(context.Background(), "Engineer", "   ")
	require.NoError(t, err)
	assert.Nil(t, out.ID)
	assert.Empty(t, out.Requirements)
	assert.Nil(t, out.ExperienceLevel)
}

func TestAnalyzeJobPosting_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := NewService(WithStore(store))

	_, err := svc.AnalyzeJobPosting(context.Background(), "Engineer", backendPosting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAnalyzeJobPosting_Limits(t *testing.T) {
	svc := NewService(WithLimits(Limits{MaxRequirements: 3, MaxResponsibilities: 1}))

	out, err := svc.AnalyzeJobPosting(context.Background(), "Backend Engineer", backendPosting)
	require.NoError(t, err)
	assert.Len(t, out.Requirements, 3)
	assert.LessOrEqual(t, len(out.Responsibilities), 1)
}

func TestMatchProfileToRequirements(t *testing.T) {
	svc := NewService()

	out, err := svc.MatchProfileToRequirements(context.Background(), MatchRequest{
		Requirements: requirementsOf("python", "kubernetes"),
		Skills:       []string{"Python"},
		ProfileText:  "Built payment services.",
	})
	require.NoError(t, err)

	assert.Equal(t, 50, out.MatchPercent)
	require.Len(t, out.Direct, 1)
	assert.Equal(t, "found in skills", out.Direct[0].Evidence)
	require.Len(t, out.Gap, 1)
	assert.Equal(t, "kubernetes", out.Gap[0].Term)
	assert.NotEmpty(t, out.Recommendations)
}

func TestMatchProfileToRequirements_Profile(t *testing.T) {
	svc := NewService()

	out, err := svc.MatchProfileToRequirements(context.Background(), MatchRequest{
		Requirements: requirementsOf("go", "kafka"),
		Profile: &types.Profile{
			Skills:      []string{"Go"},
			Experiences: []types.Experience{{Title: "Engineer", Company: "Acme", Description: "Ran Kafka clusters"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, out.MatchPercent)
	require.Len(t, out.Direct, 2)
	assert.Equal(t, "found in skills", out.Direct[0].Evidence)
	assert.Equal(t, "found in profile text", out.Direct[1].Evidence)
}

func TestMatchProfileToRequirements_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		reqs  []types.Requirement
		field string
	}{
		{"negative weight", []types.Requirement{{Term: "go", Weight: -1, Category: types.CategoryRequired}}, "Weight"},
		{"unknown category", []types.Requirement{{Term: "go", Weight: 1, Category: "nice"}}, "Category"},
		{"empty term", []types.Requirement{{Term: "", Weight: 1, Category: types.CategoryGeneral}}, "Term"},
		{"blank term", []types.Requirement{{Term: "  ", Weight: 1, Category: types.CategoryGeneral}}, "term"},
		{"duplicate term", []types.Requirement{
			{Term: "go", Weight: 2, Category: types.CategoryGeneral},
			{Term: "Go", Weight: 1, Category: types.CategoryGeneral},
		}, "term"},
	}

	svc := NewService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MatchProfileToRequirements(context.Background(), MatchRequest{Requirements: tt.reqs})

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Contains(t, inputErr.Field, tt.field)
		})
	}
}

func TestMatchProfileToRequirements_EmptyRequirements(t *testing.T) {
	client := &cannedClient{response: `["Model advice"]`}
	svc := NewService(WithGenerator(recommend.NewGenerator(recommend.WithClient(client))))

	out, err := svc.MatchProfileToRequirements(context.Background(), MatchRequest{Skills: []string{"Go"}})
	require.NoError(t, err)

	assert.Equal(t, 100, out.MatchPercent)
	assert.Empty(t, out.Recommendations)
	assert.Zero(t, client.calls.Load(), "no model call without requirements")
}

func TestMatchProfileToRequirements_StoredAnalysis(t *testing.T) {
	store := newMemStore()
	svc := NewService(WithStore(store))
	ctx := context.Background()

	analysis, err := svc.AnalyzeJobPosting(ctx, "Backend Engineer", backendPosting)
	require.NoError(t, err)

	out, err := svc.MatchProfileToRequirements(ctx, MatchRequest{AnalysisID: analysis.ID, Skills: []string{"Python", "Kubernetes"}})
	require.NoError(t, err)
	require.NotNil(t, out.ID)
	assert.Equal(t, len(analysis.Requirements), out.Total())
	assert.Equal(t, analysis.ID, store.links[*out.ID])
}

func TestMatchProfileToRequirements_MissingAnalysis(t *testing.T) {
	missing := uuid.New()

	_, err := NewService(WithStore(newMemStore())).MatchProfileToRequirements(context.Background(), MatchRequest{AnalysisID: &missing})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ID)

	_, err = NewService().MatchProfileToRequirements(context.Background(), MatchRequest{AnalysisID: &missing})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestMatchProfileToRequirements_ModelRecommendations(t *testing.T) {
	client := &cannedClient{response: "```json\n[\"Add a Kubernetes project\", \" \", \"Mention Helm\"]\n```"}
	svc := NewService(WithGenerator(recommend.NewGenerator(recommend.WithClient(client))))

	out, err := svc.MatchProfileToRequirements(context.Background(), MatchRequest{
		Requirements: requirementsOf("python", "kubernetes"),
		Skills:       []string{"Python"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Add a Kubernetes project", "Mention Helm"}, out.Recommendations)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestMatchProfileToRequirements_ModelFailureFallsBack(t *testing.T) {
	client := &cannedClient{err: errors.New("quota exceeded")}
	withModel := NewService(WithGenerator(recommend.NewGenerator(recommend.WithClient(client))))
	rulesOnly := NewService()

	req := MatchRequest{Requirements: requirementsOf("python", "kubernetes"), Skills: []string{"Python"}}
	got, err := withModel.MatchProfileToRequirements(context.Background(), req)
	require.NoError(t, err)
	want, err := rulesOnly.MatchProfileToRequirements(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, want.Recommendations, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), recommend.MaxRecommendations)
}

func TestScoreDocument(t *testing.T) {
	store := newMemStore()
	svc := NewService(WithStore(store))

	doc := scoring.Document{
		PlainText: "Summary\nBackend engineer.\nExperience\nBuilt Python services.\nEducation\nBSc\nSkills\nPython",
		Bullets:   []string{"Built 3 Python services", "Reduced latency by 40%"},
	}
	reqs := []types.Requirement{
		{Term: "python", Weight: 1, Category: types.CategoryRequired},
		{Term: "kubernetes", Weight: 1, Category: types.CategoryPreferred},
	}
	out, err := svc.ScoreDocument(context.Background(), ScoreRequest{Requirements: reqs, Document: doc})
	require.NoError(t, err)

	require.NotNil(t, out.ID)
	assert.Equal(t, []string{"kubernetes"}, out.MissingKeywords)
	assert.Equal(t, 50, out.Breakdown.ATS.KeywordCoverage)
	assert.Equal(t, 100, out.Breakdown.ATS.SectionScore)
	assert.Equal(t, 16, out.Breakdown.Reviewer.MetricsScore)
	assert.Contains(t, store.scores, *out.ID)
}

func TestScoreDocument_ModelRecommendations(t *testing.T) {
	client := &cannedClient{response: `["Quantify every bullet"]`}
	svc := NewService(WithGenerator(recommend.NewGenerator(recommend.WithClient(client))))

	out, err := svc.ScoreDocument(context.Background(), ScoreRequest{Document: scoring.Document{PlainText: "Experience"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Quantify every bullet"}, out.Recommendations)
}

func TestScoreBatch_PreservesOrder(t *testing.T) {
	svc := NewService(WithBatchConcurrency(2))
	reqs := requirementsOf("python", "go")

	docs := make([]scoring.Document, 9)
	for i := range docs {
		docs[i] = scoring.Document{
			PlainText: strings.Repeat("python ", i*60),
			Bullets:   []string{strings.Repeat("Led 2 teams ", i+1)},
		}
	}

	results, err := svc.ScoreBatch(context.Background(), ScoreBatchRequest{Requirements: reqs, Documents: docs})
	require.NoError(t, err)
	require.Len(t, results, len(docs))
	for i, doc := range docs {
		assert.Equal(t, svc.scorer.ScoreDocument(doc, reqs), results[i], "document %d", i)
	}
}

func TestScoreBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService().ScoreBatch(ctx, ScoreBatchRequest{Documents: []scoring.Document{{PlainText: "a"}, {PlainText: "b"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreBatch_InvalidRequirements(t *testing.T) {
	_, err := NewService().ScoreBatch(context.Background(), ScoreBatchRequest{
		Documents:    []scoring.Document{{}},
		Requirements: []types.Requirement{{Term: "go", Weight: -2, Category: types.CategoryGeneral}},
	})
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestScoreBatch_RequiresDocuments(t *testing.T) {
	_, err := NewService().ScoreBatch(context.Background(), ScoreBatchRequest{Requirements: requirementsOf("go")})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "documents", inputErr.Field)
}
