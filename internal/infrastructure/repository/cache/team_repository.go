package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/team"
	basecache "github.com/riskibarqy/volley-sync/internal/platform/cache"
)

const teamKeyPrefix = "team:key:"

// TeamRepository memoizes team lookups by natural key. Writes go through and drop cached lookups.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[cachedTeamByKey]
}

var _ team.Repository = (*TeamRepository)(nil)

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{next: next, cache: basecache.NewStore[cachedTeamByKey](ttl)}
}

func (r *TeamRepository) FindByKey(ctx context.Context, key team.Key) (team.Team, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, teamCacheKey(key), func(ctx context.Context) (cachedTeamByKey, error) {
		item, exists, err := r.next.FindByKey(ctx, key)
		return cachedTeamByKey{value: item, exists: exists}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListActive(ctx context.Context, poolID int64) ([]team.Team, error) {
	return r.next.ListActive(ctx, poolID)
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	created, err := r.next.Create(ctx, item)
	r.cache.Delete(teamCacheKey(item.Key()))
	return created, err
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team, changes []string) (team.Team, error) {
	updated, err := r.next.Update(ctx, item, changes)
	r.cache.Delete(teamCacheKey(item.Key()))
	return updated, err
}

func (r *TeamRepository) Deactivate(ctx context.Context, id int64) error {
	err := r.next.Deactivate(ctx, id)
	// Only the id is known here.
	r.cache.DeletePrefix(teamKeyPrefix)
	return err
}

type cachedTeamByKey struct {
	value  team.Team
	exists bool
}

func teamCacheKey(key team.Key) string {
	return teamKeyPrefix + strconv.FormatInt(key.PoolID, 10) + ":" + key.TeamName
}
