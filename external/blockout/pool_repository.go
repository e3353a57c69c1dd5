package blockout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/riskibarqy/volley-sync/internal/domain/pool"
)

// PoolRepository implements pool.Repository over the pools collection.
type PoolRepository struct {
	res   *resource
	codec timeCodec
}

var _ pool.Repository = (*PoolRepository)(nil)

func (r *PoolRepository) FindByKey(ctx context.Context, key pool.Key) (pool.Pool, bool, error) {
	path := segment(key.PoolCode) + segment(key.LeagueCode) + segment(strconv.Itoa(key.Season))
	dto, found, err := findOne[poolDTO](ctx, r.res, "pools.find_by_key", path, nil)
	if err != nil || !found {
		return pool.Pool{}, false, err
	}
	item, err := r.codec.poolFromDTO(dto)
	if err != nil {
		return pool.Pool{}, false, err
	}
	return item, true, nil
}

func (r *PoolRepository) ListActive(ctx context.Context, leagueCode string) ([]pool.Pool, error) {
	dtos, err := findMany[poolDTO](ctx, r.res, "pools.list_active", "/active", url.Values{"league_code": {leagueCode}})
	if err != nil {
		return nil, err
	}
	return convertAll(dtos, r.codec.poolFromDTO)
}

func (r *PoolRepository) Create(ctx context.Context, item pool.Pool) (pool.Pool, error) {
	dto, err := create(ctx, r.res, "pools.create", r.codec.poolToDTO(item))
	if err != nil {
		return pool.Pool{}, err
	}
	return r.codec.poolFromDTO(dto)
}

func (r *PoolRepository) Update(ctx context.Context, item pool.Pool, changes []string) (pool.Pool, error) {
	if item.ID == 0 {
		return pool.Pool{}, fmt.Errorf("update pool %s: missing id", item.PoolCode)
	}
	r.res.logger.DebugContext(ctx, "updating pool", "pool_id", item.ID, "changes", changes)
	dto, err := replace(ctx, r.res, "pools.update", item.ID, r.codec.poolToDTO(item))
	if err != nil {
		return pool.Pool{}, err
	}
	return r.codec.poolFromDTO(dto)
}

func (r *PoolRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.res, "pools.deactivate", id)
}
