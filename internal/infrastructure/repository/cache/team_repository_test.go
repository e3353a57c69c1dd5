package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/team"
	teammock "github.com/riskibarqy/volley-sync/internal/mocks/domain/team"
	"github.com/stretchr/testify/mock"
)

func TestTeamRepository_FindByKey_MemoizesLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := teammock.NewRepository(t)
	key := team.Key{PoolID: 3, TeamName: "TOURS VOLLEY-BALL"}
	next.On("FindByKey", mock.Anything, key).Return(team.Team{ID: 10, PoolID: 3, TeamName: key.TeamName}, true, nil).Once()

	repo := NewTeamRepository(next, time.Minute)
	for i := 0; i < 3; i++ {
		item, found, err := repo.FindByKey(ctx, key)
		if err != nil {
			t.Fatalf("find by key: %v", err)
		}
		if !found || item.ID != 10 {
			t.Fatalf("unexpected lookup: found=%v item=%+v", found, item)
		}
	}
}

func TestTeamRepository_CreateDropsNegativeLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := teammock.NewRepository(t)
	key := team.Key{PoolID: 3, TeamName: "NANTES REZE"}
	created := team.Team{ID: 11, PoolID: 3, TeamName: key.TeamName}

	next.On("FindByKey", mock.Anything, key).Return(team.Team{}, false, nil).Once()
	next.On("Create", ctx, team.Team{PoolID: 3, TeamName: key.TeamName}).Return(created, nil).Once()
	next.On("FindByKey", mock.Anything, key).Return(created, true, nil).Once()

	repo := NewTeamRepository(next, time.Minute)
	if _, found, _ := repo.FindByKey(ctx, key); found {
		t.Fatalf("expected miss before create")
	}
	if _, err := repo.Create(ctx, team.Team{PoolID: 3, TeamName: key.TeamName}); err != nil {
		t.Fatalf("create: %v", err)
	}
	item, found, err := repo.FindByKey(ctx, key)
	if err != nil || !found || item.ID != 11 {
		t.Fatalf("expected fresh lookup after create, got found=%v item=%+v err=%v", found, item, err)
	}
}

func TestTeamRepository_FindByKey_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := teammock.NewRepository(t)
	key := team.Key{PoolID: 3, TeamName: "CANNES"}
	next.On("FindByKey", mock.Anything, key).Return(team.Team{}, false, errors.New("store down")).Once()
	next.On("FindByKey", mock.Anything, key).Return(team.Team{ID: 12}, true, nil).Once()

	repo := NewTeamRepository(next, time.Minute)
	if _, _, err := repo.FindByKey(ctx, key); err == nil {
		t.Fatalf("expected error")
	}
	if _, found, err := repo.FindByKey(ctx, key); err != nil || !found {
		t.Fatalf("expected retry to load, got found=%v err=%v", found, err)
	}
}
