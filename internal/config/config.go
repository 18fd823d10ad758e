// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. RESUME_FIT_PORT
	EnvPrefix = "RESUME_FIT"
	// DefaultConfigName is looked up in the working directory when no path is given
	DefaultConfigName = "resume-fit.yaml"
)

// Config represents the runtime configuration. Every field has a default, so
// an empty environment yields a working deterministic setup with no store and
// no model.
type Config struct {
	// Collaborators
	DatabaseURL  string        `mapstructure:"database_url" json:"database_url,omitempty"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key" json:"gemini_api_key,omitempty"`
	LLMTimeout   time.Duration `mapstructure:"llm_timeout" json:"llm_timeout,omitempty" validate:"gte=0"`
	LLMModelTier string        `mapstructure:"llm_model_tier" json:"llm_model_tier,omitempty" validate:"omitempty,oneof=lite standard advanced"`
	RedisURL     string        `mapstructure:"redis_url" json:"redis_url,omitempty"`
	LLMCacheTTL  time.Duration `mapstructure:"llm_cache_ttl" json:"llm_cache_ttl,omitempty" validate:"gte=0"`
	LexiconPath  string        `mapstructure:"lexicon_path" json:"lexicon_path,omitempty"`

	// Server
	Port              int             `mapstructure:"port" json:"port,omitempty" validate:"gte=1,lte=65535"`
	FetchTimeout      time.Duration   `mapstructure:"fetch_timeout" json:"fetch_timeout,omitempty" validate:"gte=0"`
	UseBrowser        bool            `mapstructure:"use_browser" json:"use_browser,omitempty"`                 // Render script-heavy job boards in headless Chrome
	AllowPrivateFetch bool            `mapstructure:"allow_private_fetch" json:"allow_private_fetch,omitempty"` // Let /analyze fetch loopback and private addresses
	RateLimit         RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`

	// Logging
	LogJSON bool `mapstructure:"log_json" json:"log_json,omitempty"`
	Debug   bool `mapstructure:"debug" json:"debug,omitempty"`

	// Limits
	MaxRequirements     int `mapstructure:"max_requirements" json:"max_requirements,omitempty" validate:"gte=1,lte=200"`
	MaxResponsibilities int `mapstructure:"max_responsibilities" json:"max_responsibilities,omitempty" validate:"gte=1,lte=50"`
	MaxRecommendations  int `mapstructure:"max_recommendations" json:"max_recommendations,omitempty" validate:"gte=1,lte=5"`
}

// RateLimitConfig configures the HTTP rate limiter
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled" json:"enabled"`
	Limit     int           `mapstructure:"limit" json:"limit,omitempty" validate:"gte=0"`
	Window    time.Duration `mapstructure:"window" json:"window,omitempty" validate:"gte=0"`
	Whitelist string        `mapstructure:"whitelist" json:"whitelist,omitempty"`
	Blacklist string        `mapstructure:"blacklist" json:"blacklist,omitempty"`
}

var defaults = map[string]any{
	"database_url":         "",
	"gemini_api_key":       "",
	"llm_timeout":          8 * time.Second,
	"llm_model_tier":       "lite",
	"redis_url":            "",
	"llm_cache_ttl":        24 * time.Hour,
	"lexicon_path":         "",
	"port":                 8080,
	"fetch_timeout":        30 * time.Second,
	"use_browser":          false,
	"allow_private_fetch":  false,
	"rate_limit.enabled":   true,
	"rate_limit.limit":     600,
	"rate_limit.window":    time.Minute,
	"rate_limit.whitelist": "",
	"rate_limit.blacklist": "",
	"log_json":             false,
	"debug":                false,
	"max_requirements":     20,
	"max_responsibilities": 8,
	"max_recommendations":  5,
}

// unprefixed environment names honored alongside RESUME_FIT_*
var aliases = map[string]string{
	"database_url":   "DATABASE_URL",
	"gemini_api_key": "GEMINI_API_KEY",
	"redis_url":      "REDIS_URL",
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration from defaults, an optional file, the
// environment and flags, in increasing precedence. An empty path looks for
// resume-fit.yaml in the working directory and ignores it when absent. Flags
// are bound by name with dashes read as underscores ("max-requirements").
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if _, err := os.Stat(DefaultConfigName); err == nil {
		v.SetConfigFile(DefaultConfigName)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", DefaultConfigName, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; known && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range aliases {
		// the prefixed name wins over the bare one
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values. The first
// offending field is reported by its config key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("config error: %w", err)
	}
	fe := fieldErrs[0]
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("config error: '%s' must be one of [%s], got %v", key, fe.Param(), fe.Value())
	case "gte":
		return fmt.Errorf("config error: '%s' must be at least %s", key, fe.Param())
	case "lte":
		return fmt.Errorf("config error: '%s' must be at most %s", key, fe.Param())
	default:
		return fmt.Errorf("config error: '%s' failed %s validation", key, fe.Tag())
	}
}

// ModelEnabled reports whether a language model is configured
func (c *Config) ModelEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// StoreEnabled reports whether a database is configured
func (c *Config) StoreEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}
