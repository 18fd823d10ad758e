// Package pipeline wires extraction, matching and scoring into the entry points
// used by the CLI and HTTP server.
package pipeline

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// DefaultBatchConcurrency bounds concurrent documents in ScoreBatch
const DefaultBatchConcurrency = 4

// Store persists analyses and result snapshots. Implemented by db.DB.
// GetJobAnalysis returns nil, nil when the analysis does not exist.
type Store interface {
	SaveJobAnalysis(ctx context.Context, title, body string, analysis *types.JobAnalysis) (uuid.UUID, error)
	GetJobAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error)
	SaveMatchResult(ctx context.Context, analysisID *uuid.UUID, result *types.MatchResult) (uuid.UUID, error)
	SaveScoreResult(ctx context.Context, analysisID *uuid.UUID, result *types.ScoreResult) (uuid.UUID, error)
}

// Limits caps the size of generated lists
type Limits struct {
	MaxRequirements     int
	MaxResponsibilities int
	MaxRecommendations  int
}

// Service runs the analysis entry points. It is safe for concurrent use.
type Service struct {
	lex              *lexicon.Lexicon
	limits           Limits
	extractor        *parsing.Extractor
	matcher          *matching.Matcher
	scorer           *scoring.Scorer
	generator        *recommend.Generator
	store            Store
	logger           *zap.Logger
	validate         *validator.Validate
	batchConcurrency int
}

// Option configures a Service
type Option func(*Service)

// WithLexicon replaces the default lexicon
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(s *Service) { s.lex = lex }
}

// WithLimits overrides list caps; zero fields keep their defaults
func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithGenerator enables the model recommendation path
func WithGenerator(g *recommend.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithStore persists every analysis and result
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithBatchConcurrency sets how many documents ScoreBatch scores at once
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// NewService builds a service from options
func NewService(opts ...Option) *Service {
	s := &Service{batchConcurrency: DefaultBatchConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	if s.lex == nil {
		s.lex = lexicon.Default()
	}
	s.logger = logger.OrNop(s.logger)
	s.validate = validator.New()

	s.extractor = parsing.NewExtractor(s.lex,
		parsing.WithMaxRequirements(s.limits.MaxRequirements),
		parsing.WithMaxResponsibilities(s.limits.MaxResponsibilities))
	s.matcher = matching.NewMatcher(s.lex, matching.WithMaxRecommendations(s.limits.MaxRecommendations))
	s.scorer = scoring.NewScorer(s.lex, scoring.WithMaxRecommendations(s.limits.MaxRecommendations))
	return s
}

// HasStore reports whether results are persisted
func (s *Service) HasStore() bool {
	return s.store != nil
}

// Analysis gets an analysis by id from the store
func (s *Service) Analysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	record, err := s.store.GetJobAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &NotFoundError{Resource: "job analysis", ID: id}
	}
	return record, nil
}

func (s *Service) modelRecommendations(ctx context.Context, sig recommend.Signals) ([]string, bool) {
	if s.generator == nil || !s.generator.HasModel() {
		return nil, false
	}
	return s.generator.Recommend(ctx, sig), true
}
