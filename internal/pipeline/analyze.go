package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/types"
)

// Analysis is a job analysis plus its store id when persisted
type Analysis struct {
	ID *uuid.UUID `json:"id,omitempty"`
	types.JobAnalysis
}

// AnalyzeJobPosting extracts the requirement model of a posting. Empty text is
// not an error; it yields an analysis with no requirements.
func (s *Service) AnalyzeJobPosting(ctx context.Context, title, body string) (*Analysis, error) {
	started := time.Now()
	out := &Analysis{JobAnalysis: s.extractor.Extract(title, body)}

	if s.store != nil {
		id, err := s.store.SaveJobAnalysis(ctx, title, body, &out.JobAnalysis)
		if err != nil {
			return nil, fmt.Errorf("failed to save job analysis: %w", err)
		}
		out.ID = &id
	}

	level := ""
	if out.ExperienceLevel != nil {
		level = string(*out.ExperienceLevel)
	}
	s.logger.Debug("analyzed job posting",
		zap.String(logger.FieldOperation, "analyze"),
		zap.String("title", logger.TruncateForLog(title, 80)),
		zap.Int("requirements", len(out.Requirements)),
		zap.Int("responsibilities", len(out.Responsibilities)),
		zap.String("experience_level", level),
		zap.Duration("elapsed", time.Since(started)))
	return out, nil
}

// resolveRequirements validates inline requirements, or loads them from a
// stored analysis when only an id is given
func (s *Service) resolveRequirements(ctx context.Context, analysisID *uuid.UUID, reqs []types.Requirement) ([]types.Requirement, error) {
	if reqs == nil && analysisID != nil {
		record, err := s.Analysis(ctx, *analysisID)
		if err != nil {
			return nil, err
		}
		return record.Analysis.Requirements, nil
	}
	if err := s.checkInput(requirementSet{Requirements: reqs}); err != nil {
		return nil, err
	}
	if err := checkRequirements(reqs); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []types.Requirement{}
	}
	return reqs, nil
}

type requirementSet struct {
	Requirements []types.Requirement `validate:"dive"`
}
