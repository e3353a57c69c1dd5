package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

type NationalScraperConfig struct {
	LeagueCode string
	LeagueName string
}

func DefaultNationalScraperConfig() NationalScraperConfig {
	return NationalScraperConfig{LeagueCode: "ABCCS", LeagueName: "NATIONAL"}
}

// NationalScraper syncs the national championship pools listed by the federation.
type NationalScraper struct {
	cfg       NationalScraperConfig
	directory FederationDirectory
	divisions DivisionStandardizer
	leagues   *LeagueSyncService
	logger    *logging.Logger
}

func NewNationalScraper(cfg NationalScraperConfig, directory FederationDirectory, divisions DivisionStandardizer, leagues *LeagueSyncService, logger *logging.Logger) *NationalScraper {
	if logger == nil {
		logger = logging.Default()
	}
	return &NationalScraper{
		cfg:       cfg,
		directory: directory,
		divisions: divisions,
		leagues:   leagues,
		logger:    logger.With("scraper", "national"),
	}
}

func (s *NationalScraper) Name() string {
	return "national"
}

func (s *NationalScraper) Scrape(ctx context.Context) error {
	ctx, span := startSpan(ctx, "NationalScraper.Scrape")
	defer span.End()

	listing, err := s.directory.NationalListing(ctx)
	if err != nil {
		return fmt.Errorf("national listing: %w", err)
	}
	season, err := pool.ParseSeason(listing.RawSeason)
	if err != nil {
		return SourceError("national listing season", err)
	}

	observed := NewKeySet()
	candidates := make([]PoolCandidate, 0, len(listing.Pools))
	for _, link := range listing.Pools {
		code := strings.TrimSpace(link.PoolCode)
		if code == "" {
			s.logger.WarnContext(ctx, "national pool link without code skipped", "href", link.Href)
			continue
		}
		observed.Add(code)

		rawDivision := pool.NationalDivision(link.PoolName)
		division, gender := s.divisions.Standardize(rawDivision)
		candidates = append(candidates, PoolCandidate{
			RawSeason: listing.RawSeason,
			Pool: pool.Pool{
				PoolCode:        code,
				LeagueCode:      s.cfg.LeagueCode,
				Season:          season,
				LeagueName:      s.cfg.LeagueName,
				PoolName:        strings.TrimSpace(link.PoolName),
				DivisionCode:    pool.DivisionNational,
				DivisionName:    division,
				Gender:          gender,
				RawDivisionName: rawDivision,
			},
		})
	}

	if _, err := s.leagues.SyncLeague(ctx, s.cfg.LeagueCode, candidates, observed); err != nil {
		return fmt.Errorf("national league %s: %w", s.cfg.LeagueCode, err)
	}
	return nil
}
