package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	concpool "github.com/sourcegraph/conc/pool"
)

type ProPoolConfig struct {
	Code        string
	Name        string
	Gender      string
	LivePageURL string
	FeedURL     string
}

type ProScraperConfig struct {
	LeagueCode string
	LeagueName string
	RawSeason  string
	Pools      []ProPoolConfig
}

func DefaultProScraperConfig() ProScraperConfig {
	return ProScraperConfig{
		LeagueCode: ProLeagueCode,
		LeagueName: "PRO",
		RawSeason:  "2024/2025",
		Pools: []ProPoolConfig{
			{
				Code:        "MSL",
				Name:        "Marmara SpikeLigue",
				Gender:      pool.GenderMale,
				LivePageURL: "http://lnv-web.dataproject.com/CompetitionMatches.aspx?ID=115",
				FeedURL:     "https://www.lnv.fr/xml/calendrier-LAM.xml",
			},
			{
				Code:        "LBM",
				Name:        "Ligue B Masculine",
				Gender:      pool.GenderMale,
				LivePageURL: "http://lnv-web.dataproject.com/CompetitionMatches.aspx?ID=116",
				FeedURL:     "https://www.lnv.fr/xml/calendrier-LBM.xml",
			},
			{
				Code:        "LAF",
				Name:        "Saforelle Power 6",
				Gender:      pool.GenderFemale,
				LivePageURL: "http://lnv-web.dataproject.com/CompetitionMatches.aspx?ID=113",
				FeedURL:     "https://www.lnv.fr/xml/calendrier-LAF.xml",
			},
		},
	}
}

// ProScraper syncs the statically configured professional pools.
type ProScraper struct {
	cfg        ProScraperConfig
	reconciler *PoolReconciler
	poolSync   *PoolSyncService
	live       *LiveFeedService
	logger     *logging.Logger
	now        func() time.Time
}

func NewProScraper(cfg ProScraperConfig, reconciler *PoolReconciler, poolSync *PoolSyncService, live *LiveFeedService, logger *logging.Logger) *ProScraper {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProScraper{
		cfg:        cfg,
		reconciler: reconciler,
		poolSync:   poolSync,
		live:       live,
		logger:     logger.With("scraper", "pro"),
		now:        time.Now,
	}
}

func (s *ProScraper) Name() string {
	return "pro"
}

func (s *ProScraper) Scrape(ctx context.Context) error {
	ctx, span := startSpan(ctx, "ProScraper.Scrape")
	defer span.End()

	season, err := pool.ParseSeason(s.cfg.RawSeason)
	if err != nil {
		return fmt.Errorf("%w: pro season: %v", ErrInvalidInput, err)
	}

	workers := concpool.New().WithErrors()
	for _, item := range s.cfg.Pools {
		workers.Go(func() error {
			return s.scrapePool(ctx, item, season)
		})
	}
	if err := workers.Wait(); err != nil {
		return err
	}

	missing, err := s.live.MissingLiveCodes(ctx, s.now())
	if err != nil {
		s.logger.WarnContext(ctx, "check started matches failed", "error", err)
		return nil
	}
	if len(missing) > 0 {
		s.logger.WarnContext(ctx, "started pro matches without live code", "count", len(missing))
	}
	return nil
}

func (s *ProScraper) scrapePool(ctx context.Context, item ProPoolConfig, season int) error {
	candidate := pool.Pool{
		PoolCode:     item.Code,
		LeagueCode:   s.cfg.LeagueCode,
		Season:       season,
		LeagueName:   s.cfg.LeagueName,
		PoolName:     item.Name,
		DivisionCode: pool.DivisionPro,
		DivisionName: item.Name,
		Gender:       changeset.NonEmpty(item.Gender),
	}

	reconciled, err := s.reconciler.Reconcile(ctx, candidate, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "reconcile pro pool failed", "pool_code", item.Code, "error", err)
		return fmt.Errorf("pool %s: %w", item.Code, err)
	}
	stored := reconciled.Record

	if _, err := s.poolSync.SyncPool(ctx, stored, s.cfg.RawSeason); err != nil {
		s.logger.ErrorContext(ctx, "sync pro pool calendar failed", "pool_code", item.Code, "error", err)
		return fmt.Errorf("pool %s: %w", item.Code, err)
	}

	var errs []error
	if item.FeedURL != "" {
		if _, err := s.live.ApplyCalendarFeed(ctx, stored.ID, item.FeedURL); err != nil {
			s.logger.WarnContext(ctx, "apply pro calendar feed failed", "pool_code", item.Code, "error", err)
			errs = append(errs, fmt.Errorf("pool %s calendar feed: %w", item.Code, err))
		}
	}
	if item.LivePageURL != "" {
		if _, err := s.live.ApplyLiveCodes(ctx, stored.ID, item.LivePageURL, item.Gender); err != nil {
			s.logger.WarnContext(ctx, "apply pro live codes failed", "pool_code", item.Code, "error", err)
			errs = append(errs, fmt.Errorf("pool %s live codes: %w", item.Code, err))
		}
	}
	return errors.Join(errs...)
}
