// Package llm wraps the optional language-model collaborator used to phrase
// recommendations. Nothing in the scoring core depends on a model being present.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap completions such as rephrasing a few sentences
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning and structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long or complex prompts
	TierAdvanced ModelTier = "advanced"
)

// ParseTier converts a configuration string into a ModelTier
func ParseTier(s string) (ModelTier, error) {
	switch tier := ModelTier(strings.ToLower(strings.TrimSpace(s))); tier {
	case TierLite, TierStandard, TierAdvanced:
		return tier, nil
	case "":
		return TierLite, nil
	default:
		return "", fmt.Errorf("unknown model tier %q", s)
	}
}

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, currently the only one implemented
const ProviderGemini Provider = "gemini"

// DefaultTimeout bounds a single model call
const DefaultTimeout = 8 * time.Second

// Config holds the model configuration
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.2,
	}
}

// GetModel returns the model name for a tier, falling back to standard then lite
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of c with model assigned to tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
