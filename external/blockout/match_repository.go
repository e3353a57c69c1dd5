package blockout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/riskibarqy/volley-sync/internal/domain/match"
)

// MatchRepository implements match.Repository over the matches collection.
type MatchRepository struct {
	res   *resource
	codec timeCodec
}

var _ match.Repository = (*MatchRepository)(nil)

func (r *MatchRepository) FindByKey(ctx context.Context, key match.Key) (match.Match, bool, error) {
	path := segment(key.LeagueCode) + segment(key.MatchCode)
	return r.findOne(ctx, "matches.find_by_key", path, nil)
}

func (r *MatchRepository) FindByTeams(ctx context.Context, query match.TeamsQuery) (match.Match, bool, error) {
	params := url.Values{
		"pool_id":    {strconv.FormatInt(query.PoolID, 10)},
		"team_id_a":  {strconv.FormatInt(query.TeamIDA, 10)},
		"team_id_b":  {strconv.FormatInt(query.TeamIDB, 10)},
		"match_date": {r.codec.format(query.MatchDate)},
	}
	return r.findOne(ctx, "matches.find_by_teams", "/search", params)
}

func (r *MatchRepository) findOne(ctx context.Context, op, path string, query url.Values) (match.Match, bool, error) {
	dto, found, err := findOne[matchDTO](ctx, r.res, op, path, query)
	if err != nil || !found {
		return match.Match{}, false, err
	}
	item, err := r.codec.matchFromDTO(dto)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) ListActive(ctx context.Context, poolID int64) ([]match.Match, error) {
	query := url.Values{"pool_id": {strconv.FormatInt(poolID, 10)}}
	dtos, err := findMany[matchDTO](ctx, r.res, "matches.list_active", "/active", query)
	if err != nil {
		return nil, err
	}
	return convertAll(dtos, r.codec.matchFromDTO)
}

func (r *MatchRepository) ListStarted(ctx context.Context, query match.StartedQuery) ([]match.Match, error) {
	params := url.Values{
		"status":       {query.Status},
		"active":       {strconv.FormatBool(query.Active)},
		"current_time": {r.codec.format(query.CurrentTime)},
	}
	dtos, err := findMany[matchDTO](ctx, r.res, "matches.list_started", "/started", params)
	if err != nil {
		return nil, err
	}
	return convertAll(dtos, r.codec.matchFromDTO)
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	dto, err := create(ctx, r.res, "matches.create", r.codec.matchToDTO(item))
	if err != nil {
		return match.Match{}, err
	}
	return r.codec.matchFromDTO(dto)
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match, changes []string) (match.Match, error) {
	if item.ID == 0 {
		return match.Match{}, fmt.Errorf("update match %s: missing id", item.MatchCode)
	}
	r.res.logger.DebugContext(ctx, "updating match", "match_id", item.ID, "changes", changes)
	dto, err := replace(ctx, r.res, "matches.update", item.ID, r.codec.matchToDTO(item))
	if err != nil {
		return match.Match{}, err
	}
	return r.codec.matchFromDTO(dto)
}

func (r *MatchRepository) Deactivate(ctx context.Context, id int64) error {
	return deactivate(ctx, r.res, "matches.deactivate", id)
}
