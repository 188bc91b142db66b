package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hotdeskhq/deskctl/internal/adapter/outbound/api"
	"github.com/hotdeskhq/deskctl/internal/adapter/outbound/cookies"
	journalstore "github.com/hotdeskhq/deskctl/internal/adapter/outbound/journal"
	"github.com/hotdeskhq/deskctl/internal/adapter/outbound/wake"
	"github.com/hotdeskhq/deskctl/internal/config"
	"github.com/hotdeskhq/deskctl/internal/domain/session"
	"github.com/hotdeskhq/deskctl/internal/service"
)

// app holds the wired components behind every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *session.Store
	client   *api.Client
	session  *service.SessionService
	journal  *service.JournalService
	metrics  *service.Metrics
	registry *prometheus.Registry
	monitor  *wake.Monitor
}

// buildApp loads config and wires the session stack. withWake adds
// the wake monitor, which only long-running commands need.
func buildApp(withWake bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	jar, err := cookies.NewJar(cfg.Server.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}

	client, err := api.NewClient(cfg.Server.BaseURL,
		api.WithHTTPClient(&http.Client{Jar: jar, Timeout: cfg.Server.Timeout}),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  session.NewStore(),
		client: client,
	}

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = service.NewMetrics(a.registry)
	}

	if cfg.Journal.Enabled {
		store, err := journalstore.NewFileStore(cfg.Journal.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.journal = service.NewJournalService(store,
			service.WithJournalChannelSize(cfg.Journal.ChannelSize),
			service.WithJournalBatchSize(cfg.Journal.BatchSize),
			service.WithJournalFlushInterval(cfg.Journal.FlushInterval),
			service.WithJournalLogger(logger),
			service.WithJournalMetrics(a.metrics),
		)
	}

	coordinatorOpts := []service.CoordinatorOption{
		service.WithRefreshInterval(cfg.Refresh.Interval),
		service.WithCoordinatorJournal(a.journal),
		service.WithCoordinatorMetrics(a.metrics),
		service.WithCoordinatorLogger(logger),
	}
	if withWake && cfg.Refresh.WakeEnabled {
		a.monitor = wake.NewMonitor(
			wake.WithCheckInterval(cfg.Refresh.WakeCheckInterval),
			wake.WithDriftThreshold(cfg.Refresh.DriftThreshold),
			wake.WithMonitorLogger(logger),
		)
		coordinatorOpts = append(coordinatorOpts, service.WithWakeSource(a.monitor))
	}

	coordinator := service.NewRefreshCoordinator(client, a.store, coordinatorOpts...)
	gateway := service.NewGateway(client.HTTPClient(), coordinator,
		service.WithGatewayLogger(logger),
		service.WithGatewayMetrics(a.metrics),
	)

	a.session = service.NewSessionService(client, a.store, coordinator, gateway,
		service.WithSessionJournal(a.journal),
		service.WithSessionMetrics(a.metrics),
		service.WithSessionLogger(logger),
	)

	return a, nil
}

// close stops background work and flushes the journal.
func (a *app) close() {
	a.session.Shutdown()
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if err := a.journal.Close(); err != nil {
		a.logger.Warn("failed to close journal", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
