package commands

import (
	"context"
	"fmt"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var scheduleSkipInitial *bool

func init() {
	scheduleSkipInitial = scheduleCmd.Flags().Bool("skip-initial", false, "Wait for the first cron tick instead of running immediately.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--skip-initial]",
	Short: "Runs a pass now, then on every SCHEDULE_CRON tick until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		return rt.schedule(cmd.Context(), *scheduleSkipInitial)
	},
}

// schedule blocks until ctx is done, then waits for an in-flight pass to return.
func (rt *runner) schedule(ctx context.Context, skipInitial bool) error {
	cronLog := cronLogger{logger: rt.logger.With("component", "cron")}
	scheduler := cron.New(
		cron.WithLocation(rt.cfg.SourceTimezone),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := scheduler.AddFunc(rt.cfg.ScheduleCron, func() {
		_ = rt.runPass(ctx)
	}); err != nil {
		return fmt.Errorf("register schedule %q: %w", rt.cfg.ScheduleCron, err)
	}

	if !skipInitial {
		_ = rt.runPass(ctx)
	}

	scheduler.Start()
	rt.logger.Info("scheduler started", "spec", rt.cfg.ScheduleCron, "location", rt.cfg.SourceTimezone.String())

	<-ctx.Done()
	rt.logger.Info("scheduler stopping")
	<-scheduler.Stop().Done()
	return nil
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
