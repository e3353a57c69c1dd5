package blockout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/riskibarqy/volley-sync/internal/domain/team"
)

// TeamRepository implements team.Repository over the teams collection.
type TeamRepository struct {
	res   *resource
	codec timeCodec
}

var _ team.Repository = (*TeamRepository)(nil)

func (r *TeamRepository) FindByKey(ctx context.Context, key team.Key) (team.Team, bool, error) {
	query := url.Values{
		"pool_id":   {strconv.FormatInt(key.PoolID, 10)},
		"team_name": {key.TeamName},
	}
	dto, found, err := findOne[teamDTO](ctx, r.res, "teams.find_by_key", "/search", query)
	if err != nil || !found {
		return team.Team{}, false, err
	}
	item, err := r.codec.teamFromDTO(dto)
	if err != nil {
		return team.Team{}, false, err
	}
	return item, true, nil
}

func (r *TeamRepository) ListActive(ctx context.Context, poolID int64) ([]team.Team, error) {
	query := url.Values{"pool_id": {strconv.FormatInt(poolID, 10)}}
	dtos, err := findMany[teamDTO](ctx, r.res, "teams.list_active", "/active", query)
	if err != nil {
		return nil, err
	}
	return convertAll(dtos, r.codec.teamFromDTO)
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	dto, err := create(ctx, r.res, "teams.create", r.codec.teamToDTO(item))
	if err != nil {
		return team.Team{}, err
	}
	return r.codec.teamFromDTO(dto)
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team, changes []string) (team.Team, error) {
	if item.ID == 0 {
		return team.Team{}, fmt.Errorf("update team %s: missing id", item.TeamName)
	}
	r.res.logger.DebugContext(ctx, "updating team", "team_id", item.ID, "changes", changes)
	dto, err := replace(ctx, r.res, "teams.update", item.ID, r.codec.teamToDTO(item))
	if err != nil {
		return team.Team{}, err
	}
	return r.codec.teamFromDTO(dto)
}

func (r *TeamRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.res, "teams.deactivate", id)
}
