package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

var serveNoSchedule *bool

func init() {
	serveNoSchedule = serveCmd.Flags().Bool("no-schedule", false, "Serve the ops API without the cron scheduler.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--no-schedule]",
	Short: "Serves the ops API next to the scheduler.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		srv, err := rt.app.NewHTTPServer()
		if err != nil {
			return err
		}

		var (
			wg       conc.WaitGroup
			serveErr error
		)
		wg.Go(func() {
			rt.logger.Info("http server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr = err
				cancel()
			}
		})
		if !*serveNoSchedule {
			wg.Go(func() {
				if err := rt.schedule(ctx, false); err != nil {
					rt.logger.Error("scheduler failed", "error", err)
				}
			})
		}

		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.logger.Error("graceful shutdown failed", "error", err)
		}
		wg.Wait()
		rt.logger.Info("http server stopped")
		return serveErr
	},
}
