// Package recommend turns score and match deficiencies into short, ranked advice.
// The templated rules always run; a configured language model may rephrase them
// within a fixed time budget, and any model failure falls back to the rules.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/prompts"
)

// MaxRecommendations caps every recommendation list
const MaxRecommendations = 5

const promptFile = "recommend.json"

var errEmptyResponse = errors.New("model returned no recommendations")

// Deterministic returns the first limit templated recommendations for sig.
// A non-positive limit uses MaxRecommendations.
func Deterministic(sig Signals, limit int) []string {
	if limit <= 0 || limit > MaxRecommendations {
		limit = MaxRecommendations
	}
	rules := sig.Rules()
	if len(rules) > limit {
		rules = rules[:limit]
	}
	return append([]string(nil), rules...)
}

// Generator produces recommendations, optionally upgraded by a language model
type Generator struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	max     int
	logger  *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithClient enables the model path
func WithClient(c llm.Client) Option {
	return func(g *Generator) { g.client = c }
}

// WithTier selects the model tier used for the model path
func WithTier(tier llm.ModelTier) Option {
	return func(g *Generator) { g.tier = tier }
}

// WithTimeout bounds a single model call
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMaxRecommendations lowers the cap below MaxRecommendations
func WithMaxRecommendations(n int) Option {
	return func(g *Generator) {
		if n > 0 && n <= MaxRecommendations {
			g.max = n
		}
	}
}

// WithLogger sets the logger for model failures and substitutions
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator. Without WithClient it is purely rule based.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		tier:    llm.TierLite,
		timeout: llm.DefaultTimeout,
		max:     MaxRecommendations,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logger.OrNop(g.logger)
	return g
}

// HasModel reports whether the model path is configured
func (g *Generator) HasModel() bool {
	return g.client != nil
}

// Recommend returns at most the configured number of recommendations for sig.
// It never fails: without a model, or when the model errors, times out or
// returns something unusable, the templated rules are returned.
func (g *Generator) Recommend(ctx context.Context, sig Signals) []string {
	fallback := Deterministic(sig, g.max)
	if g.client == nil {
		return fallback
	}

	started := time.Now()
	recs, err := g.fromModel(ctx, sig)
	if err != nil {
		g.logger.Warn("model recommendations unavailable, using rules",
			zap.String("prompt", sig.PromptKey()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return fallback
	}

	g.logger.Debug("substituted model recommendations",
		zap.String("prompt", sig.PromptKey()),
		zap.String(logger.FieldModel, g.client.GetModel(g.tier)),
		zap.Int("count", len(recs)),
		zap.Duration("elapsed", time.Since(started)))
	return recs
}

type modelResult struct {
	raw string
	err error
}

// fromModel runs the model call in its own goroutine so a client that ignores
// ctx still cannot hold the caller past the timeout
func (g *Generator) fromModel(ctx context.Context, sig Signals) ([]string, error) {
	prompt, err := BuildPrompt(sig, g.max)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan modelResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- modelResult{err: fmt.Errorf("model client panicked: %v", r)}
			}
		}()
		raw, err := g.client.GenerateJSON(ctx, prompt, g.tier)
		done <- modelResult{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return ParseRecommendations(res.raw, g.max)
	}
}

// BuildPrompt renders the bounded prompt for sig
func BuildPrompt(sig Signals, limit int) (string, error) {
	system, err := prompts.Get(promptFile, "system")
	if err != nil {
		return "", err
	}
	data := sig.PromptData()
	data["System"] = system
	data["Max"] = strconv.Itoa(limit)
	return prompts.Render(promptFile, sig.PromptKey(), data)
}

// ParseRecommendations reads a JSON array of strings from a model response.
// Items are trimmed, empty items dropped, and the list capped at limit.
func ParseRecommendations(raw string, limit int) ([]string, error) {
	arr := llm.FirstJSONArray(raw)
	if arr == "" {
		return nil, &llm.DecodeError{Response: raw, Cause: errors.New("no JSON array in response")}
	}

	var items []string
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, &llm.DecodeError{Response: raw, Cause: err}
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, errEmptyResponse
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
