package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/types"
)

// MatchRequest asks for a gap analysis. Requirements may be given inline or
// taken from a stored analysis. Profile, when set, adds its skills and text to
// Skills and ProfileText.
type MatchRequest struct {
	AnalysisID   *uuid.UUID          `json:"analysis_id,omitempty"`
	Requirements []types.Requirement `json:"requirements,omitempty"`
	Skills       []string            `json:"skills,omitempty"`
	ProfileText  string              `json:"profile_text,omitempty"`
	Profile      *types.Profile      `json:"profile,omitempty"`
}

// Match is a match result plus its store id when persisted
type Match struct {
	ID *uuid.UUID `json:"id,omitempty"`
	types.MatchResult
}

// MatchProfileToRequirements classifies each requirement against the profile.
// Recommendations come from the model when one is configured and the
// requirement list is not empty.
func (s *Service) MatchProfileToRequirements(ctx context.Context, req MatchRequest) (*Match, error) {
	started := time.Now()
	reqs, err := s.resolveRequirements(ctx, req.AnalysisID, req.Requirements)
	if err != nil {
		return nil, err
	}

	skills, text := req.Skills, req.ProfileText
	if req.Profile != nil {
		skills = append(append([]string{}, skills...), req.Profile.Skills...)
		text = strings.TrimSpace(text + "\n" + req.Profile.Text())
	}

	result := s.matcher.Match(reqs, skills, text)
	if len(reqs) > 0 {
		sig := recommend.NewMatchSignals(result.MatchPercent, result.Direct, result.Partial, result.Gap, reqs)
		sig.ProfileExcerpt = text
		if recs, ok := s.modelRecommendations(ctx, sig); ok {
			result.Recommendations = recs
		}
	}

	out := &Match{MatchResult: result}
	if s.store != nil {
		id, err := s.store.SaveMatchResult(ctx, req.AnalysisID, &out.MatchResult)
		if err != nil {
			return nil, fmt.Errorf("failed to save match result: %w", err)
		}
		out.ID = &id
	}

	s.logger.Debug("matched profile",
		zap.String(logger.FieldOperation, "match"),
		zap.Int("requirements", len(reqs)),
		zap.Int("direct", len(result.Direct)),
		zap.Int("partial", len(result.Partial)),
		zap.Int("gaps", len(result.Gap)),
		zap.Int("match_percent", result.MatchPercent),
		zap.Duration("elapsed", time.Since(started)))
	return out, nil
}
