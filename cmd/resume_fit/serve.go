package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/config"
	"github.com/jonathan/resume-fit/internal/server"
	"github.com/jonathan/resume-fit/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the analyze, match, score and evaluate operations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if a.store == nil {
		a.logger.Warn("no database configured; results will not be persisted")
	}

	opts := []server.Option{server.WithLogger(a.logger)}
	if a.store != nil {
		opts = append(opts, server.WithHealthCheck(a.store))
	}
	srv := server.New(serverConfig(a.cfg), a.service, opts...)

	a.logger.Info("serving",
		zap.Int("port", a.cfg.Port),
		zap.Bool("store", a.store != nil),
		zap.Bool("model", a.cfg.ModelEnabled()),
		zap.Bool("private_fetch", a.cfg.AllowPrivateFetch))
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// serverConfig maps the application config onto the server's. The model
// route budget follows the model deadline only when a model is configured.
func serverConfig(cfg *config.Config) server.Config {
	var modelTimeout time.Duration
	if cfg.ModelEnabled() {
		modelTimeout = cfg.LLMTimeout
	}
	return server.Config{
		Port:              cfg.Port,
		FetchTimeout:      cfg.FetchTimeout,
		UseBrowser:        cfg.UseBrowser,
		AllowPrivateFetch: cfg.AllowPrivateFetch,
		RateLimit: ratelimit.Settings{
			Enabled:      cfg.RateLimit.Enabled,
			Limit:        cfg.RateLimit.Limit,
			Window:       cfg.RateLimit.Window,
			Whitelist:    cfg.RateLimit.Whitelist,
			Blacklist:    cfg.RateLimit.Blacklist,
			ModelTimeout: modelTimeout,
		},
	}
}
