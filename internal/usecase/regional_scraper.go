package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	concpool "github.com/sourcegraph/conc/pool"
)

type RegionalScraperConfig struct {
	// ExcludedLeagues are not scraped; their remaining active pools are swept.
	ExcludedLeagues []string
	MaxLeagues      int
}

func DefaultRegionalScraperConfig() RegionalScraperConfig {
	return RegionalScraperConfig{
		ExcludedLeagues: []string{"LILO", "LIMY", "LIGY", "LIGU", "LIMART"},
		MaxLeagues:      8,
	}
}

// RegionalScraper syncs every regional league listed by the federation.
type RegionalScraper struct {
	cfg       RegionalScraperConfig
	excluded  KeySet
	directory FederationDirectory
	divisions DivisionStandardizer
	leagues   *LeagueSyncService
	sweeper   *Sweeper
	logger    *logging.Logger
}

func NewRegionalScraper(
	cfg RegionalScraperConfig,
	directory FederationDirectory,
	divisions DivisionStandardizer,
	leagues *LeagueSyncService,
	sweeper *Sweeper,
	logger *logging.Logger,
) *RegionalScraper {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxLeagues < 1 {
		cfg.MaxLeagues = 1
	}
	return &RegionalScraper{
		cfg:       cfg,
		excluded:  NewKeySet(cfg.ExcludedLeagues...),
		directory: directory,
		divisions: divisions,
		leagues:   leagues,
		sweeper:   sweeper,
		logger:    logger.With("scraper", "regional"),
	}
}

func (s *RegionalScraper) Name() string {
	return "regional"
}

func (s *RegionalScraper) Scrape(ctx context.Context) error {
	ctx, span := startSpan(ctx, "RegionalScraper.Scrape")
	defer span.End()

	leagues, err := s.directory.RegionalLeagues(ctx)
	if err != nil {
		return fmt.Errorf("regional leagues: %w", err)
	}

	workers := concpool.New().WithErrors().WithMaxGoroutines(s.cfg.MaxLeagues)
	for _, league := range leagues {
		workers.Go(func() error {
			return s.scrapeLeague(ctx, league)
		})
	}
	return workers.Wait()
}

func (s *RegionalScraper) scrapeLeague(ctx context.Context, league RegionalLeague) error {
	logger := s.logger.With("league_code", league.LeagueCode, "league_name", league.LeagueName)

	if s.excluded.Has(league.LeagueCode) {
		if _, err := s.sweeper.SweepPools(ctx, league.LeagueCode, nil); err != nil {
			logger.ErrorContext(ctx, "sweep excluded league failed", "error", err)
			return fmt.Errorf("regional league %s: %w", league.LeagueCode, err)
		}
		return nil
	}

	links, err := s.directory.RegionalPools(ctx, league)
	if err != nil {
		logger.ErrorContext(ctx, "list regional pools failed", "error", err)
		return fmt.Errorf("regional league %s: %w", league.LeagueCode, err)
	}

	observed := NewKeySet()
	candidates := make([]PoolCandidate, 0, len(links))
	for _, link := range links {
		code := strings.TrimSpace(link.PoolCode)
		observed.Add(code)

		season, err := pool.ParseSeason(link.RawSeason)
		if err != nil {
			logger.WarnContext(ctx, "regional pool skipped", "pool_code", code, "error", SourceError("regional pool season", err))
			continue
		}
		division, gender := s.divisions.Standardize(link.RawDivisionName)
		candidates = append(candidates, PoolCandidate{
			RawSeason: link.RawSeason,
			Pool: pool.Pool{
				PoolCode:        code,
				LeagueCode:      league.LeagueCode,
				Season:          season,
				LeagueName:      league.LeagueName,
				PoolName:        strings.TrimSpace(link.PoolName),
				DivisionCode:    pool.DivisionRegional,
				DivisionName:    division,
				Gender:          gender,
				RawDivisionName: link.RawDivisionName,
			},
		})
	}

	if _, err := s.leagues.SyncLeague(ctx, league.LeagueCode, candidates, observed); err != nil {
		return fmt.Errorf("regional league %s: %w", league.LeagueCode, err)
	}
	return nil
}
