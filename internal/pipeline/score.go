package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// ScoreRequest asks for the two quality scores of a rendered document.
// Headings are derived from the plain text when omitted.
type ScoreRequest struct {
	AnalysisID   *uuid.UUID          `json:"analysis_id,omitempty"`
	Requirements []types.Requirement `json:"requirements,omitempty"`
	scoring.Document
}

// Score is a score result plus its store id when persisted
type Score struct {
	ID *uuid.UUID `json:"id,omitempty"`
	types.ScoreResult
}

// ScoreDocument computes the ATS and recruiter scores of a document
func (s *Service) ScoreDocument(ctx context.Context, req ScoreRequest) (*Score, error) {
	reqs, err := s.resolveRequirements(ctx, req.AnalysisID, req.Requirements)
	if err != nil {
		return nil, err
	}

	out := &Score{ScoreResult: s.score(ctx, req.Document, reqs)}
	if s.store != nil {
		id, err := s.store.SaveScoreResult(ctx, req.AnalysisID, &out.ScoreResult)
		if err != nil {
			return nil, fmt.Errorf("failed to save score result: %w", err)
		}
		out.ID = &id
	}
	return out, nil
}

// ScoreBatchRequest scores several renderings of one resume against a
// single requirement model
type ScoreBatchRequest struct {
	AnalysisID   *uuid.UUID          `json:"analysis_id,omitempty"`
	Requirements []types.Requirement `json:"requirements,omitempty"`
	Documents    []scoring.Document  `json:"documents"`
}

// ScoreBatch scores documents concurrently against the same requirements.
// Results are in input order. Batch results are not persisted.
func (s *Service) ScoreBatch(ctx context.Context, req ScoreBatchRequest) ([]types.ScoreResult, error) {
	if len(req.Documents) == 0 {
		return nil, &InputError{Field: "documents", Message: "at least one document is required"}
	}
	reqs, err := s.resolveRequirements(ctx, req.AnalysisID, req.Requirements)
	if err != nil {
		return nil, err
	}

	results := make([]types.ScoreResult, len(req.Documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, doc := range req.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.score(gctx, doc, reqs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch scoring interrupted: %w", err)
	}
	return results, nil
}

func (s *Service) score(ctx context.Context, doc scoring.Document, reqs []types.Requirement) types.ScoreResult {
	started := time.Now()
	result, sig := s.scorer.Analyze(doc, reqs)
	if recs, ok := s.modelRecommendations(ctx, sig); ok {
		result.Recommendations = recs
	}

	s.logger.Debug("scored document",
		zap.String(logger.FieldOperation, "score"),
		zap.Int("requirements", len(reqs)),
		zap.Int("bullets", len(doc.Bullets)),
		zap.Int("ats_score", result.ATSScore),
		zap.Int("recruiter_score", result.RecruiterScore),
		zap.Int("missing_keywords", len(result.MissingKeywords)),
		zap.Duration("elapsed", time.Since(started)))
	return result
}
