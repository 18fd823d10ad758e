package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// AnalyzeRequest is the body of POST /analyze. The posting comes from URL,
// else HTML, else Body; a missing title is taken from the posting.
type AnalyzeRequest struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	HTML  string `json:"html,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ScoreBody is the body of POST /score. HTML, when set, replaces the document fields.
type ScoreBody struct {
	pipeline.ScoreRequest
	HTML string `json:"html,omitempty"`
}

// ScoreBatchBody is the body of POST /score/batch. Each HTML entry is parsed
// and appended after the structured documents.
type ScoreBatchBody struct {
	pipeline.ScoreBatchRequest
	HTML []string `json:"html,omitempty"`
}

// ScoreBatchResponse holds one result per document, in request order
type ScoreBatchResponse struct {
	Results []types.ScoreResult `json:"results"`
}

// EvaluateRequest is the body of POST /evaluate: a profile and a rendered
// document checked against the same requirements
type EvaluateRequest struct {
	AnalysisID   *uuid.UUID          `json:"analysis_id,omitempty"`
	Requirements []types.Requirement `json:"requirements,omitempty"`
	Skills       []string            `json:"skills,omitempty"`
	ProfileText  string              `json:"profile_text,omitempty"`
	Profile      *types.Profile      `json:"profile,omitempty"`
	Document     scoring.Document    `json:"document"`
	HTML         string              `json:"html,omitempty"`
}

// EvaluateResponse pairs the match and score of one evaluation
type EvaluateResponse struct {
	Match *pipeline.Match `json:"match"`
	Score *pipeline.Score `json:"score"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	title, body, err := s.resolvePosting(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.service.AnalyzeJobPosting(r.Context(), title, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if out.ID != nil {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, out)
}

func (s *Server) resolvePosting(ctx context.Context, req AnalyzeRequest) (string, string, error) {
	title := strings.TrimSpace(req.Title)
	switch {
	case req.URL != "":
		if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", "", &ErrValidation{Field: "url", Message: "must be an absolute http or https URL"}
		}
		posting, err := ingestion.FetchPosting(ctx, s.httpClient, req.URL, s.fetchOpts...)
		if err != nil {
			return "", "", err
		}
		s.logger.Debug("fetched posting",
			zap.String("url", posting.Metadata.URL),
			zap.String("posting_hash", posting.Metadata.Hash))
		if title == "" {
			title = posting.Title
		}
		return title, posting.Body, nil

	case req.HTML != "":
		parsedTitle, body, err := ingestion.ParseJobHTML(req.HTML)
		if err != nil {
			return "", "", &ErrValidation{Field: "html", Message: err.Error()}
		}
		if title == "" {
			title = parsedTitle
		}
		return title, body, nil

	case strings.TrimSpace(req.Body) != "" || title != "":
		body := ingestion.CleanText(req.Body)
		if title == "" {
			title, body = ingestion.SplitTitle(body)
		}
		return title, body, nil

	default:
		return "", "", &ErrValidation{Field: "body", Message: "one of body, html or url is required"}
	}
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req pipeline.MatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.service.MatchProfileToRequirements(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreBody
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.HTML != "" {
		doc, err := ingestion.ParseDocumentHTML(req.HTML)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "html", Message: err.Error()})
			return
		}
		req.Document = doc
	}

	out, err := s.service.ScoreDocument(r.Context(), req.ScoreRequest)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req ScoreBatchBody
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Documents)+len(req.HTML) > maxBatchDocuments {
		s.fail(w, r, &ErrValidation{Field: "documents", Message: fmt.Sprintf("at most %d documents per batch", maxBatchDocuments)})
		return
	}
	for i, html := range req.HTML {
		doc, err := ingestion.ParseDocumentHTML(html)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: fmt.Sprintf("html[%d]", i), Message: err.Error()})
			return
		}
		req.Documents = append(req.Documents, doc)
	}

	results, err := s.service.ScoreBatch(r.Context(), req.ScoreBatchRequest)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ScoreBatchResponse{Results: results})
}

// handleEvaluate runs the match and the score concurrently
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	doc := req.Document
	if req.HTML != "" {
		parsed, err := ingestion.ParseDocumentHTML(req.HTML)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "html", Message: err.Error()})
			return
		}
		doc = parsed
	}

	var resp EvaluateResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		out, err := s.service.MatchProfileToRequirements(ctx, pipeline.MatchRequest{
			AnalysisID:   req.AnalysisID,
			Requirements: req.Requirements,
			Skills:       req.Skills,
			ProfileText:  req.ProfileText,
			Profile:      req.Profile,
		})
		resp.Match = out
		return err
	})
	g.Go(func() error {
		out, err := s.service.ScoreDocument(ctx, pipeline.ScoreRequest{
			AnalysisID:   req.AnalysisID,
			Requirements: req.Requirements,
			Document:     doc,
		})
		resp.Score = out
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	record, err := s.service.Analysis(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleHealth reports 503 when a configured store cannot be reached
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "ok", Store: "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is required"}
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return nil
}
