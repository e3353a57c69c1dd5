package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/riskibarqy/volley-sync/internal/app"
	"github.com/riskibarqy/volley-sync/internal/config"
	"github.com/riskibarqy/volley-sync/internal/observability"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/usecase"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "scraper mirrors volleyball competitions into the record store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runner owns the process-wide resources shared by every subcommand.
type runner struct {
	cfg    config.Config
	logger *logging.Logger
	app    *app.App

	telemetry *observability.Telemetry
}

func bootstrap(ctx context.Context) (*runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	base, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logger := base.With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	rt := &runner{cfg: cfg, logger: logger}
	if rt.telemetry, err = observability.Start(cfg, logger); err != nil {
		return nil, fmt.Errorf("start telemetry: %w", err)
	}

	if rt.app, err = app.New(ctx, cfg, logger); err != nil {
		rt.close()
		return nil, fmt.Errorf("build app: %w", err)
	}
	return rt, nil
}

func (rt *runner) close() {
	if rt.app != nil {
		if err := rt.app.Close(); err != nil {
			rt.logger.Error("close app resources failed", "error", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.telemetry.Shutdown(ctx); err != nil {
		rt.logger.Error("stop telemetry failed", "error", err)
	}
	_ = rt.logger.Sync()
}

// runPass executes one bounded pass; overlapping passes are reported and skipped.
func (rt *runner) runPass(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, rt.cfg.RunTimeout)
	defer cancel()

	entry, err := rt.app.Orchestrator.RunOnce(runCtx)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		rt.logger.WarnContext(ctx, "scrape run skipped", "reason", "previous run still active")
		return nil
	case err != nil:
		rt.logger.ErrorContext(ctx, "scrape run failed", "execution_log_id", entry.ID, "error", err)
		return err
	default:
		rt.logger.InfoContext(ctx, "scrape run completed",
			"execution_log_id", entry.ID,
			"duration_seconds", entry.Duration,
		)
		return nil
	}
}
