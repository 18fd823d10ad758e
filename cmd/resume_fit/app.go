package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/config"
	"github.com/jonathan/resume-fit/internal/db"
	"github.com/jonathan/resume-fit/internal/lexicon"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/recommend"
	"github.com/jonathan/resume-fit/internal/types"
)

// newLogger builds the command logger; tests swap it to observe Sync
var newLogger = logger.New

// app holds what a command needs to run; close releases it
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *pipeline.Service
	store   *db.DB
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// newApp loads configuration and wires the service. The store is only
// connected when withStore is set and a database URL is configured.
func newApp(ctx context.Context, cmd *cobra.Command, withStore bool) (*app, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	a := &app{cfg: cfg, logger: log}

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLexicon(lex),
		pipeline.WithLogger(log),
		pipeline.WithLimits(pipeline.Limits{
			MaxRequirements:     cfg.MaxRequirements,
			MaxResponsibilities: cfg.MaxResponsibilities,
			MaxRecommendations:  cfg.MaxRecommendations,
		}),
	}

	if cfg.ModelEnabled() {
		gen, err := a.newGenerator(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
		opts = append(opts, pipeline.WithGenerator(gen))
	}

	if withStore && cfg.StoreEnabled() {
		store, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.store = store
		opts = append(opts, pipeline.WithStore(store))
	}

	a.service = pipeline.NewService(opts...)
	return a, nil
}

func (a *app) newGenerator(ctx context.Context) (*recommend.Generator, error) {
	tier, err := llm.ParseTier(a.cfg.LLMModelTier)
	if err != nil {
		return nil, err
	}

	var client llm.Client
	client, err = llm.NewClient(ctx, llm.DefaultConfig(), a.cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	if a.cfg.RedisURL != "" {
		cache, err := llm.NewRedisCache(ctx, a.cfg.RedisURL)
		if err != nil {
			// the cache is an optimization; run uncached
			a.logger.Warn("model response cache unavailable", zap.Error(err))
		} else {
			client = llm.NewCachedClient(client, cache, a.cfg.LLMCacheTTL)
		}
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	a.logger.Debug("model recommendations enabled",
		zap.String(logger.FieldModel, client.GetModel(tier)),
		zap.Duration("timeout", a.cfg.LLMTimeout))

	return recommend.NewGenerator(
		recommend.WithClient(client),
		recommend.WithTier(tier),
		recommend.WithTimeout(a.cfg.LLMTimeout),
		recommend.WithMaxRecommendations(a.cfg.MaxRecommendations),
		recommend.WithLogger(a.logger),
	), nil
}

// readInput reads a file, or standard input when path is "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func readRequirements(cmd *cobra.Command, path string) ([]types.Requirement, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return parsing.DecodeRequirements(data)
}

// splitList splits a comma separated flag value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
