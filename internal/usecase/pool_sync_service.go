package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const calendarKickoffLayout = "2006-01-02 15:04"

type PoolSyncResult struct {
	PoolID  int64       `json:"pool_id"`
	Rows    int         `json:"rows"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Teams   SweepReport `json:"teams"`
	Matches SweepReport `json:"matches"`
}

// PoolSyncService mirrors one pool calendar export into the remote store.
type PoolSyncService struct {
	calendar  CalendarSource
	teamRepo  team.Repository
	matchRepo match.Repository
	teams     *TeamReconciler
	matches   *MatchReconciler
	sweeper   *Sweeper
	location  *time.Location
	logger    *logging.Logger
}

func NewPoolSyncService(
	calendar CalendarSource,
	teamRepo team.Repository,
	matchRepo match.Repository,
	teams *TeamReconciler,
	matches *MatchReconciler,
	sweeper *Sweeper,
	location *time.Location,
	logger *logging.Logger,
) *PoolSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &PoolSyncService{
		calendar:  calendar,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		teams:     teams,
		matches:   matches,
		sweeper:   sweeper,
		location:  location,
		logger:    logger,
	}
}

// SyncPool reconciles every calendar row of p, then sweeps the pool's teams and matches.
func (s *PoolSyncService) SyncPool(ctx context.Context, p pool.Pool, rawSeason string) (PoolSyncResult, error) {
	ctx, span := startSpan(ctx, "PoolSyncService.SyncPool")
	defer span.End()

	result := PoolSyncResult{PoolID: p.ID}
	logger := s.logger.With("pool_id", p.ID, "pool_code", p.PoolCode, "league_code", p.LeagueCode)

	rows, err := s.calendar.FetchCalendar(ctx, CalendarRequest{
		RawSeason:  rawSeason,
		LeagueCode: p.LeagueCode,
		PoolCode:   p.PoolCode,
	})
	if err != nil {
		return result, fmt.Errorf("fetch calendar of pool %s: %w", p.PoolCode, err)
	}
	if len(rows) == 0 {
		return result, fmt.Errorf("%w: calendar of pool %s has no rows", ErrSourceParsing, p.PoolCode)
	}
	result.Rows = len(rows)

	activeTeams, err := s.teamRepo.ListActive(ctx, p.ID)
	if err != nil {
		return result, fmt.Errorf("list active teams of pool %s: %w", p.PoolCode, err)
	}
	activeMatches, err := s.matchRepo.ListActive(ctx, p.ID)
	if err != nil {
		return result, fmt.Errorf("list active matches of pool %s: %w", p.PoolCode, err)
	}

	teamsByName := make(map[string]team.Team, len(activeTeams))
	for _, item := range activeTeams {
		teamsByName[item.TeamName] = item
	}
	matchesByCode := make(map[string]match.Match, len(activeMatches))
	for _, item := range activeMatches {
		matchesByCode[item.MatchCode] = item
	}

	observedTeams := NewKeySet()
	observedMatches := NewKeySet()
	for _, row := range rows {
		if strings.TrimSpace(row.ClubIDA) == "" || strings.TrimSpace(row.ClubIDB) == "" {
			result.Skipped++
			logger.DebugContext(ctx, "calendar row without club id skipped", "match_code", row.MatchCode, "line", row.Line)
			continue
		}
		observedTeams.Add(strings.TrimSpace(row.TeamNameA))
		observedTeams.Add(strings.TrimSpace(row.TeamNameB))
		observedMatches.Add(strings.TrimSpace(row.MatchCode))

		if err := s.syncRow(ctx, p, row, teamsByName, matchesByCode); err != nil {
			if errors.Is(err, ErrSourceParsing) {
				result.Skipped++
				logger.WarnContext(ctx, "calendar row skipped", "match_code", row.MatchCode, "line", row.Line, "error", err)
				continue
			}
			result.Failed++
			logger.ErrorContext(ctx, "calendar row failed", "match_code", row.MatchCode, "line", row.Line, "error", err)
		}
	}

	var (
		wg                    conc.WaitGroup
		teamErr, matchErr     error
		teamSweep, matchSweep SweepReport
	)
	wg.Go(func() {
		teamSweep, teamErr = s.sweeper.SweepTeams(ctx, p.ID, observedTeams)
	})
	wg.Go(func() {
		matchSweep, matchErr = s.sweeper.SweepMatches(ctx, p.ID, observedMatches)
	})
	wg.Wait()
	result.Teams = teamSweep
	result.Matches = matchSweep

	if err := errors.Join(teamErr, matchErr); err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "pool calendar synced",
		"rows", result.Rows,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"teams_deactivated", teamSweep.Deactivated,
		"matches_deactivated", matchSweep.Deactivated,
	)
	return result, nil
}

func (s *PoolSyncService) syncRow(
	ctx context.Context,
	p pool.Pool,
	row CalendarRow,
	teamsByName map[string]team.Team,
	matchesByCode map[string]match.Match,
) error {
	kickoff, err := s.parseKickoff(row.Date, row.Time)
	if err != nil {
		return SourceError("calendar row "+row.MatchCode, err)
	}

	teamA, err := s.syncTeam(ctx, p.ID, row.TeamNameA, row.ClubIDA, teamsByName)
	if err != nil {
		return err
	}
	teamB, err := s.syncTeam(ctx, p.ID, row.TeamNameB, row.ClubIDB, teamsByName)
	if err != nil {
		return err
	}

	candidate := match.Match{
		MatchCode:  strings.TrimSpace(row.MatchCode),
		LeagueCode: strings.TrimSpace(row.LeagueCode),
		PoolID:     p.ID,
		TeamIDA:    teamA.ID,
		TeamIDB:    teamB.ID,
		MatchDate:  &kickoff,
		Set:        row.Set,
		Score:      row.Score,
		Status:     match.StatusFor(row.Set, row.Score),
		Venue:      row.Venue,
		Referee1:   row.Referee1,
		Referee2:   row.Referee2,
	}

	var existing *match.Match
	if found, ok := matchesByCode[candidate.MatchCode]; ok {
		existing = &found
	}
	reconciled, err := s.matches.Reconcile(ctx, candidate, existing)
	if err != nil {
		return err
	}
	matchesByCode[candidate.MatchCode] = reconciled.Record
	return nil
}

func (s *PoolSyncService) syncTeam(ctx context.Context, poolID int64, name, clubID string, teamsByName map[string]team.Team) (team.Team, error) {
	candidate := team.Team{
		PoolID:   poolID,
		TeamName: strings.TrimSpace(name),
		ClubID:   changeset.NonEmpty(clubID),
	}

	var existing *team.Team
	if found, ok := teamsByName[candidate.TeamName]; ok {
		existing = &found
	}
	reconciled, err := s.teams.Reconcile(ctx, candidate, existing)
	if err != nil {
		return team.Team{}, err
	}
	teamsByName[candidate.TeamName] = reconciled.Record
	return reconciled.Record, nil
}

func (s *PoolSyncService) parseKickoff(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	kickoff, err := time.ParseInLocation(calendarKickoffLayout, value, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse kickoff %q: %w", value, err)
	}
	return kickoff, nil
}
