package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
	matchmock "github.com/riskibarqy/volley-sync/internal/mocks/domain/match"
	poolmock "github.com/riskibarqy/volley-sync/internal/mocks/domain/pool"
	teammock "github.com/riskibarqy/volley-sync/internal/mocks/domain/team"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTestLeagueSync(calendar CalendarSource, pools *poolmock.Repository, teams *teammock.Repository, matches *matchmock.Repository) *LeagueSyncService {
	logger := logging.NewNop()
	sweeper := NewSweeper(pools, teams, matches, logger)
	poolSync := NewPoolSyncService(
		calendar,
		teams,
		matches,
		NewTeamReconciler(teams, logger),
		NewMatchReconciler(matches, logger),
		sweeper,
		nil,
		logger,
	)
	return NewLeagueSyncService(pools, NewPoolReconciler(pools, logger), poolSync, sweeper, 2, logger)
}

func TestLeagueSyncService_SyncLeague_CountsFailuresAndSweepsStalePools(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pools := poolmock.NewRepository(t)
	teams := teammock.NewRepository(t)
	matches := matchmock.NewRepository(t)

	kept := calendarPool()
	stale := pool.Pool{ID: 9, PoolCode: "3MZ", LeagueCode: "ABCCS", Season: 2024, Active: true}
	pools.On("ListActive", ctx, "ABCCS").Return([]pool.Pool{kept, stale}, nil).Twice()

	added := samplePool()
	added.PoolCode = "3MB"
	added.PoolName = "Nationale 3 Masculine Poule B"
	pools.On("FindByKey", ctx, added.Key()).Return(pool.Pool{}, false, nil).Once()
	pools.On("Create", ctx, mock.Anything).Return(func(_ context.Context, p pool.Pool) (pool.Pool, error) {
		p.ID = 8
		return p, nil
	}).Once()

	teams.On("ListActive", ctx, int64(9)).Return([]team.Team{{ID: 90, PoolID: 9, TeamName: "OLD"}}, nil).Once()
	teams.On("Deactivate", ctx, int64(90)).Return(nil).Once()
	matches.On("ListActive", ctx, int64(9)).Return(nil, nil).Once()
	pools.On("Deactivate", ctx, int64(9)).Return(nil).Once()

	unchanged := samplePool()
	candidates := []PoolCandidate{
		{Pool: unchanged, RawSeason: "2024/2025"},
		{Pool: added, RawSeason: "2024/2025"},
	}

	svc := newTestLeagueSync(stubCalendar{err: errors.New("export unavailable")}, pools, teams, matches)
	result, err := svc.SyncLeague(ctx, "ABCCS", candidates, NewKeySet("3MA", "3MB"))
	if err != nil {
		t.Fatalf("sync league: %v", err)
	}
	if result.Pools != 2 {
		t.Fatalf("expected two pools, got %d", result.Pools)
	}
	// Both calendars fail to download.
	if result.Failed != 2 {
		t.Fatalf("expected two failures, got %d", result.Failed)
	}
	if result.Sweep.Deactivated != 2 {
		t.Fatalf("expected stale pool and its team deactivated, got %+v", result.Sweep)
	}
	pools.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeagueSyncService_SyncLeague_InvalidPoolIsCountedAndSkipped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pools := poolmock.NewRepository(t)
	teams := teammock.NewRepository(t)
	matches := matchmock.NewRepository(t)

	pools.On("ListActive", ctx, "ABCCS").Return(nil, nil).Twice()

	invalid := samplePool()
	invalid.DivisionCode = ""

	svc := newTestLeagueSync(stubCalendar{}, pools, teams, matches)
	result, err := svc.SyncLeague(ctx, "ABCCS", []PoolCandidate{{Pool: invalid, RawSeason: "2024/2025"}}, NewKeySet("3MA"))
	if err != nil {
		t.Fatalf("sync league: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", result)
	}
	pools.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLeagueSyncService_SyncLeague_ListFailureStopsLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pools := poolmock.NewRepository(t)
	pools.On("ListActive", ctx, "ABCCS").Return(nil, errors.New("store down")).Once()

	svc := newTestLeagueSync(stubCalendar{}, pools, teammock.NewRepository(t), matchmock.NewRepository(t))
	if _, err := svc.SyncLeague(ctx, "ABCCS", []PoolCandidate{{Pool: samplePool()}}, NewKeySet("3MA")); err == nil {
		t.Fatalf("expected error")
	}
}
