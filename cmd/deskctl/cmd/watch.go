package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session alive and report changes",
	Long: `Run the session keep-alive loop in the foreground.

The session is refreshed periodically and immediately after the
machine wakes from sleep. Session state changes are logged as they
happen. With metrics enabled, a Prometheus endpoint is served.

Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := buildApp(true)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.monitor != nil {
		app.monitor.Start(ctx)
	}

	if err := app.session.Bootstrap(ctx); err != nil {
		return err
	}
	snap := app.store.Snapshot()
	if !snap.Authenticated {
		return errors.New("not logged in, run 'deskctl login' first")
	}
	app.logger.Info("watching session", "username", snap.Profile.Username, "refresh_interval", app.cfg.Refresh.Interval)

	var metricsServer *http.Server
	if app.registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: app.cfg.Metrics.Addr, Handler: mux}
		go func() {
			app.logger.Info("metrics endpoint listening", "addr", app.cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	updates, unsubscribe := app.store.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			if metricsServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				metricsServer.Shutdown(shutdownCtx)
				cancel()
			}
			fmt.Fprintln(os.Stderr, "deskctl stopped")
			return nil

		case snap := <-updates:
			switch {
			case snap.Authenticated:
				app.logger.Info("session updated", "username", snap.Profile.Username)
			case snap.ErrorMessage != "":
				app.logger.Warn("session lost", "reason", snap.ErrorMessage)
			default:
				app.logger.Info("signed out")
			}
		}
	}
}
