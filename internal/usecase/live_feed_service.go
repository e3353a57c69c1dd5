package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

const feedEmptySet = "0-0"

type LiveFeedResult struct {
	Seen    int `json:"seen"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// LiveFeedService refines professional league matches from the league's own publications.
type LiveFeedService struct {
	source    ProLeagueSource
	teamRepo  team.Repository
	matchRepo match.Repository
	aliases   TeamAliasResolver
	logger    *logging.Logger
}

func NewLiveFeedService(
	source ProLeagueSource,
	teamRepo team.Repository,
	matchRepo match.Repository,
	aliases TeamAliasResolver,
	logger *logging.Logger,
) *LiveFeedService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveFeedService{
		source:    source,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		aliases:   aliases,
		logger:    logger,
	}
}

// ApplyCalendarFeed copies kickoff times and set results from the XML calendar onto the pool's active matches.
func (s *LiveFeedService) ApplyCalendarFeed(ctx context.Context, poolID int64, feedURL string) (LiveFeedResult, error) {
	ctx, span := startSpan(ctx, "LiveFeedService.ApplyCalendarFeed")
	defer span.End()

	var result LiveFeedResult
	entries, err := s.source.CalendarFeed(ctx, feedURL)
	if err != nil {
		return result, fmt.Errorf("fetch calendar feed %s: %w", feedURL, err)
	}
	active, err := s.matchRepo.ListActive(ctx, poolID)
	if err != nil {
		return result, fmt.Errorf("list active matches for pool %d: %w", poolID, err)
	}

	byCode := make(map[string]match.Match, len(active))
	for _, item := range active {
		byCode[item.MatchCode] = item
	}

	for _, entry := range entries {
		result.Seen++
		existing, ok := byCode[entry.MatchCode]
		if !ok {
			result.Skipped++
			continue
		}

		updated, changes := applyFeedEntry(existing, entry)
		if changes.Empty() {
			continue
		}
		if _, err := s.matchRepo.Update(ctx, updated, changes.Strings()); err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "apply calendar feed entry failed", "match_code", entry.MatchCode, "error", err)
			continue
		}
		result.Updated++
		s.logger.InfoContext(ctx, "updated match from calendar feed", "match_code", entry.MatchCode, "changes", changes.String())
	}

	return result, nil
}

func applyFeedEntry(existing match.Match, entry FeedMatch) (match.Match, changeset.List) {
	updated := existing
	kickoff := entry.MatchDate
	updated.MatchDate = &kickoff

	set := strings.TrimSpace(entry.Set)
	if set != "" && set != feedEmptySet {
		updated.Set = &set
		if strings.Contains(set, "3") {
			updated.Status = match.StatusFinished
		}
	}

	var b changeset.Builder
	b.Time(match.FieldMatchDate, existing.MatchDate, updated.MatchDate)
	b.OptionalString("set", existing.Set, updated.Set)
	b.String("status", existing.Status, updated.Status)
	return updated, b.Changes()
}

// ApplyLiveCodes stores the live-score identifier of every listed match found in the pool.
func (s *LiveFeedService) ApplyLiveCodes(ctx context.Context, poolID int64, pageURL, gender string) (LiveFeedResult, error) {
	ctx, span := startSpan(ctx, "LiveFeedService.ApplyLiveCodes")
	defer span.End()

	var result LiveFeedResult
	entries, err := s.source.LiveMatches(ctx, pageURL)
	if err != nil {
		return result, fmt.Errorf("fetch live matches %s: %w", pageURL, err)
	}

	for _, entry := range entries {
		result.Seen++
		updated, err := s.applyLiveCode(ctx, poolID, gender, entry)
		switch {
		case err != nil:
			result.Failed++
			s.logger.ErrorContext(ctx, "apply live code failed", "live_code", entry.LiveCode, "error", err)
		case updated:
			result.Updated++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

func (s *LiveFeedService) applyLiveCode(ctx context.Context, poolID int64, gender string, entry LiveMatch) (bool, error) {
	home, okHome := s.aliases.FullName(entry.HomeTeam, gender)
	guest, okGuest := s.aliases.FullName(entry.GuestTeam, gender)
	if !okHome || !okGuest {
		s.logger.WarnContext(ctx, "live match team not found in aliases",
			"home", entry.HomeTeam,
			"guest", entry.GuestTeam,
			"gender", gender,
		)
		return false, nil
	}

	teamA, found, err := s.teamRepo.FindByKey(ctx, team.Key{PoolID: poolID, TeamName: home})
	if err != nil || !found {
		return false, err
	}
	teamB, found, err := s.teamRepo.FindByKey(ctx, team.Key{PoolID: poolID, TeamName: guest})
	if err != nil || !found {
		return false, err
	}

	existing, found, err := s.matchRepo.FindByTeams(ctx, match.TeamsQuery{
		PoolID:    poolID,
		TeamIDA:   teamA.ID,
		TeamIDB:   teamB.ID,
		MatchDate: entry.MatchDate,
	})
	if err != nil || !found {
		return false, err
	}

	var b changeset.Builder
	b.Int("live_code", changeset.Deref(existing.LiveCode), entry.LiveCode)
	changes := b.Changes()
	if changes.Empty() {
		return false, nil
	}

	updated := existing
	updated.LiveCode = changeset.Ptr(entry.LiveCode)
	if _, err := s.matchRepo.Update(ctx, updated, changes.Strings()); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "updated match live code", "match_code", existing.MatchCode, "changes", changes.String())
	return true, nil
}

// MissingLiveCodes lists active pro league matches that kicked off before now, are not finished
// and still have no live code.
func (s *LiveFeedService) MissingLiveCodes(ctx context.Context, now time.Time) ([]match.Match, error) {
	ctx, span := startSpan(ctx, "LiveFeedService.MissingLiveCodes")
	defer span.End()

	started, err := s.matchRepo.ListStarted(ctx, match.StartedQuery{
		Status:      match.StatusUpcoming,
		Active:      true,
		CurrentTime: now,
	})
	if err != nil {
		return nil, fmt.Errorf("list started matches: %w", err)
	}

	var out []match.Match
	for _, item := range started {
		if item.LeagueCode != ProLeagueCode || item.LiveCode != nil {
			continue
		}
		out = append(out, item)
		s.logger.WarnContext(ctx, "started match has no live code", "match_code", item.MatchCode, "pool_id", item.PoolID)
	}
	return out, nil
}
