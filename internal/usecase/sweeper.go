package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

// SweepReport counts what one sweep deactivated within its scope.
type SweepReport struct {
	Scope       string `json:"scope"`
	Deactivated int    `json:"deactivated"`
	Failed      int    `json:"failed"`
}

func (r *SweepReport) merge(other SweepReport) {
	r.Deactivated += other.Deactivated
	r.Failed += other.Failed
}

// Sweeper deactivates stored-active records that the current pass did not observe.
type Sweeper struct {
	poolRepo  pool.Repository
	teamRepo  team.Repository
	matchRepo match.Repository
	logger    *logging.Logger
}

func NewSweeper(poolRepo pool.Repository, teamRepo team.Repository, matchRepo match.Repository, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{
		poolRepo:  poolRepo,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// KeySet is the set of natural key components observed in one scope.
type KeySet map[string]struct{}

func NewKeySet(keys ...string) KeySet {
	out := make(KeySet, len(keys))
	for _, k := range keys {
		out.Add(k)
	}
	return out
}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// SweepPools deactivates the league's active pools missing from observed, teams and matches first.
func (s *Sweeper) SweepPools(ctx context.Context, leagueCode string, observed KeySet) (SweepReport, error) {
	ctx, span := startSpan(ctx, "Sweeper.SweepPools")
	defer span.End()

	report := SweepReport{Scope: "league " + leagueCode}
	active, err := s.poolRepo.ListActive(ctx, leagueCode)
	if err != nil {
		return report, fmt.Errorf("list active pools for league %s: %w", leagueCode, err)
	}

	for _, item := range active {
		if observed.Has(item.PoolCode) {
			continue
		}

		teams, err := s.SweepTeams(ctx, item.ID, nil)
		report.merge(teams)
		if err != nil {
			s.logger.WarnContext(ctx, "sweep teams of stale pool failed", "pool_id", item.ID, "pool_code", item.PoolCode, "error", err)
		}
		matches, err := s.SweepMatches(ctx, item.ID, nil)
		report.merge(matches)
		if err != nil {
			s.logger.WarnContext(ctx, "sweep matches of stale pool failed", "pool_id", item.ID, "pool_code", item.PoolCode, "error", err)
		}

		if err := s.poolRepo.Deactivate(ctx, item.ID); err != nil {
			report.Failed++
			s.logger.ErrorContext(ctx, "deactivate pool failed", "pool_id", item.ID, "pool_code", item.PoolCode, "error", err)
			continue
		}
		report.Deactivated++
		s.logger.InfoContext(ctx, "deactivated pool", "pool_id", item.ID, "pool_code", item.PoolCode, "league_code", leagueCode)
	}

	return report, nil
}

// SweepTeams deactivates the pool's active teams whose name is not in observed.
func (s *Sweeper) SweepTeams(ctx context.Context, poolID int64, observed KeySet) (SweepReport, error) {
	ctx, span := startSpan(ctx, "Sweeper.SweepTeams")
	defer span.End()

	report := SweepReport{Scope: "teams of pool " + strconv.FormatInt(poolID, 10)}
	active, err := s.teamRepo.ListActive(ctx, poolID)
	if err != nil {
		return report, fmt.Errorf("list active teams for pool %d: %w", poolID, err)
	}

	for _, item := range active {
		if observed.Has(item.TeamName) {
			continue
		}
		if err := s.teamRepo.Deactivate(ctx, item.ID); err != nil {
			report.Failed++
			s.logger.ErrorContext(ctx, "deactivate team failed", "team_id", item.ID, "team_name", item.TeamName, "error", err)
			continue
		}
		report.Deactivated++
		s.logger.InfoContext(ctx, "deactivated team", "team_id", item.ID, "team_name", item.TeamName, "pool_id", poolID)
	}

	return report, nil
}

// SweepMatches deactivates the pool's active matches whose code is not in observed.
func (s *Sweeper) SweepMatches(ctx context.Context, poolID int64, observed KeySet) (SweepReport, error) {
	ctx, span := startSpan(ctx, "Sweeper.SweepMatches")
	defer span.End()

	report := SweepReport{Scope: "matches of pool " + strconv.FormatInt(poolID, 10)}
	active, err := s.matchRepo.ListActive(ctx, poolID)
	if err != nil {
		return report, fmt.Errorf("list active matches for pool %d: %w", poolID, err)
	}

	for _, item := range active {
		if observed.Has(item.MatchCode) {
			continue
		}
		if err := s.matchRepo.Deactivate(ctx, item.ID); err != nil {
			report.Failed++
			s.logger.ErrorContext(ctx, "deactivate match failed", "match_id", item.ID, "match_code", item.MatchCode, "error", err)
			continue
		}
		report.Deactivated++
		s.logger.InfoContext(ctx, "deactivated match", "match_id", item.ID, "match_code", item.MatchCode, "pool_id", poolID)
	}

	return report, nil
}
