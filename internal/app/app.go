package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/external/blockout"
	"github.com/riskibarqy/volley-sync/external/ffvb"
	"github.com/riskibarqy/volley-sync/external/lnv"
	"github.com/riskibarqy/volley-sync/internal/config"
	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
	"github.com/riskibarqy/volley-sync/internal/infrastructure/repository/boltstore"
	repocache "github.com/riskibarqy/volley-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/volley-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/volley-sync/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/volley-sync/internal/platform/id"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/platform/mapping"
	"github.com/riskibarqy/volley-sync/internal/usecase"
)

// App holds the wired scrape pipeline and the resources it owns.
type App struct {
	cfg          config.Config
	logger       *logging.Logger
	Orchestrator *usecase.OrchestratorService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	logs, err := a.openExecutionLogs(ctx)
	if err != nil {
		return nil, err
	}

	// Everything logged while a run is active also lands in the run's execution log.
	capture := logging.NewCapture(logging.LevelInfo, cfg.LogCaptureMaxBytes)
	runLogger := logger.Tee(capture)

	store := blockout.NewClient(blockout.ClientConfig{
		PoolsBaseURL:   cfg.StorePoolsURL,
		TeamsBaseURL:   cfg.StoreTeamsURL,
		MatchesBaseURL: cfg.StoreMatchesURL,
		Timeout:        cfg.StoreTimeout,
		ReadRetries:    cfg.StoreReadRetries,
		Location:       cfg.SourceTimezone,
		Logger:         runLogger.With("component", "record_store"),
		CircuitBreaker: cfg.StoreCircuitConfig,
	})

	federation, err := ffvb.NewClient(ffvb.ClientConfig{
		NationalURL:  cfg.FFVBNationalURL,
		RegionalURL:  cfg.FFVBRegionalURL,
		ExportURL:    cfg.FFVBExportURL,
		Timeout:      cfg.FFVBTimeout,
		Attempts:     cfg.FFVBAttempts,
		RetryDelay:   cfg.FFVBRetryDelay,
		MaxDownloads: cfg.FFVBMaxDownloads,
		Logger:       runLogger.With("component", "federation"),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build federation client: %w", err)
	}
	a.closers = append(a.closers, func() error {
		federation.Close()
		return nil
	})

	proLeague := lnv.NewClient(lnv.ClientConfig{
		Timeout:  cfg.LNVTimeout,
		Location: cfg.SourceTimezone,
		Logger:   runLogger.With("component", "pro_league"),
	})

	divisions := mapping.LoadDivisionTable(cfg.DivisionsFile, logger)
	aliases := mapping.LoadAliasTable(cfg.TeamAliasesFile, cfg.TeamAliasThreshold, logger)
	logger.Info("mapping tables loaded", "divisions", divisions.Len(), "file", cfg.DivisionsFile)

	// Every team read and write shares the lookup cache so writes drop stale lookups.
	teams := repocache.NewTeamRepository(store.Teams, cfg.TeamLookupCacheTTL)

	poolReconciler := usecase.NewPoolReconciler(store.Pools, runLogger)
	teamReconciler := usecase.NewTeamReconciler(teams, runLogger)
	matchReconciler := usecase.NewMatchReconciler(store.Matches, runLogger)
	sweeper := usecase.NewSweeper(store.Pools, teams, store.Matches, runLogger)

	poolSync := usecase.NewPoolSyncService(
		federation,
		teams,
		store.Matches,
		teamReconciler,
		matchReconciler,
		sweeper,
		cfg.SourceTimezone,
		runLogger,
	)
	leagueSync := usecase.NewLeagueSyncService(store.Pools, poolReconciler, poolSync, sweeper, cfg.PoolWorkers, runLogger)
	liveFeed := usecase.NewLiveFeedService(proLeague, teams, store.Matches, aliases, runLogger)

	regionalCfg := usecase.DefaultRegionalScraperConfig()
	regionalCfg.ExcludedLeagues = cfg.RegionalExcluded
	regionalCfg.MaxLeagues = cfg.RegionalLeagueWorkers

	scrapers := []usecase.Scraper{
		usecase.NewNationalScraper(usecase.DefaultNationalScraperConfig(), federation, divisions, leagueSync, runLogger),
		usecase.NewRegionalScraper(regionalCfg, federation, divisions, leagueSync, sweeper, runLogger),
		usecase.NewProScraper(usecase.DefaultProScraperConfig(), poolReconciler, poolSync, liveFeed, runLogger),
	}

	a.Orchestrator = usecase.NewOrchestratorService(scrapers, logs, capture, idgen.NewUUIDGenerator(), runLogger)
	return a, nil
}

// NewHTTPServer builds the ops API around the orchestrator.
func (a *App) NewHTTPServer() (*http.Server, error) {
	if strings.TrimSpace(a.cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(a.Orchestrator, a.cfg.RunTimeout, a.logger)
	router := httpapi.NewRouter(handler, a.logger, a.cfg.CORSAllowedOrigins, a.cfg.InternalJobToken)

	return &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       a.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.cfg.WriteTimeout,
	}, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openExecutionLogs(ctx context.Context) (executionlog.Repository, error) {
	switch a.cfg.ExecutionLogBackend {
	case config.ExecutionLogBackendPostgres:
		db, err := OpenPostgres(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.logger.Info("execution logs stored in postgres", "db_name", dbNameFromURL(a.cfg.DBURL))
		return postgres.NewExecutionLogRepository(db), nil
	default:
		if dir := filepath.Dir(a.cfg.BoltPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create bolt directory %s: %w", dir, err)
			}
		}
		repo, err := boltstore.Open(a.cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		a.logger.Info("execution logs stored in bolt", "path", a.cfg.BoltPath)
		return repo, nil
	}
}
