package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 8*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "lite", cfg.LLMModelTier)
	assert.Equal(t, 20, cfg.MaxRequirements)
	assert.Equal(t, 8, cfg.MaxResponsibilities)
	assert.Equal(t, 5, cfg.MaxRecommendations)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.ModelEnabled())
	assert.False(t, cfg.StoreEnabled())
	assert.False(t, cfg.AllowPrivateFetch)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"database_url": "postgres://localhost/resume_fit",
		"llm_timeout": "3s",
		"max_requirements": 12,
		"rate_limit": {"enabled": false, "limit": 10},
		"debug": true
	}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/resume_fit", cfg.DatabaseURL)
	assert.True(t, cfg.StoreEnabled())
	assert.Equal(t, 3*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 12, cfg.MaxRequirements)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 8, cfg.MaxResponsibilities, "unset keys keep their defaults")
}

func TestLoad_FileYAML(t *testing.T) {
	path := writeFile(t, "resume-fit.yaml", "port: 9090\nllm_model_tier: standard\nrate_limit:\n  window: 30s\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "standard", cfg.LLMModelTier)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoad_FileInvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{ invalid json }`)

	cfg, err := Load(path, nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json", nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RESUME_FIT_PORT", "7070")
	t.Setenv("RESUME_FIT_RATE_LIMIT_LIMIT", "42")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DATABASE_URL", "postgres://bare")
	t.Setenv("RESUME_FIT_DATABASE_URL", "postgres://prefixed")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 42, cfg.RateLimit.Limit)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.ModelEnabled())
	assert.Equal(t, "postgres://prefixed", cfg.DatabaseURL)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("RESUME_FIT_PORT", "7070")
	path := writeFile(t, "config.yaml", "max_requirements: 15\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.Int("max-requirements", 20, "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "6060"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port, "a set flag wins over the environment")
	assert.Equal(t, 15, cfg.MaxRequirements, "an unset flag does not shadow the file")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeFile(t, "config.yaml", "max_recommendations: 9\n")

	cfg, err := Load(path, nil)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_recommendations")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative timeout", func(c *Config) { c.LLMTimeout = -time.Second }, "'llm_timeout' must be at least 0"},
		{"unknown tier", func(c *Config) { c.LLMModelTier = "huge" }, "'llm_model_tier' must be one of"},
		{"empty tier", func(c *Config) { c.LLMModelTier = "" }, ""},
		{"zero port", func(c *Config) { c.Port = 0 }, "'port' must be at least 1"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "'port' must be at most 65535"},
		{"zero requirements", func(c *Config) { c.MaxRequirements = 0 }, "'max_requirements' must be at least 1"},
		{"too many recommendations", func(c *Config) { c.MaxRecommendations = 6 }, "'max_recommendations' must be at most 5"},
		{"negative rate limit", func(c *Config) { c.RateLimit.Limit = -1 }, "'rate_limit.limit' must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
