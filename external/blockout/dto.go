package blockout

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/match"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/domain/team"
)

// wireTimeLayout is the naive local timestamp the record store exchanges.
const wireTimeLayout = "2006-01-02T15:04:05"

var wireTimeInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	wireTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// timeCodec converts between zoned times and the store's naive local timestamps.
type timeCodec struct {
	loc *time.Location
}

func (c timeCodec) format(t time.Time) string {
	return t.In(c.loc).Format(wireTimeLayout)
}

func (c timeCodec) formatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := c.format(*t)
	return &out
}

func (c timeCodec) parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range wireTimeInputLayouts {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func (c timeCodec) parsePtr(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := c.parse(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type poolDTO struct {
	ID              int64   `json:"id,omitempty"`
	PoolCode        string  `json:"pool_code"`
	LeagueCode      string  `json:"league_code"`
	Season          int     `json:"season"`
	PoolName        string  `json:"pool_name"`
	DivisionCode    string  `json:"division_code"`
	DivisionName    string  `json:"division_name"`
	Gender          *string `json:"gender"`
	RawDivisionName string  `json:"raw_division_name"`
	LeagueName      string  `json:"league_name"`
	Active          bool    `json:"active"`
	LastUpdate      *string `json:"last_update,omitempty"`
}

func (c timeCodec) poolToDTO(p pool.Pool) poolDTO {
	return poolDTO{
		ID:              p.ID,
		PoolCode:        p.PoolCode,
		LeagueCode:      p.LeagueCode,
		Season:          p.Season,
		PoolName:        p.PoolName,
		DivisionCode:    p.DivisionCode,
		DivisionName:    p.DivisionName,
		Gender:          p.Gender,
		RawDivisionName: p.RawDivisionName,
		LeagueName:      p.LeagueName,
		Active:          p.Active,
		LastUpdate:      c.formatPtr(p.LastUpdate),
	}
}

func (c timeCodec) poolFromDTO(d poolDTO) (pool.Pool, error) {
	lastUpdate, err := c.parsePtr(d.LastUpdate)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("pool %d last_update: %w", d.ID, err)
	}
	return pool.Pool{
		ID:              d.ID,
		PoolCode:        d.PoolCode,
		LeagueCode:      d.LeagueCode,
		Season:          d.Season,
		PoolName:        d.PoolName,
		DivisionCode:    d.DivisionCode,
		DivisionName:    d.DivisionName,
		Gender:          d.Gender,
		RawDivisionName: d.RawDivisionName,
		LeagueName:      d.LeagueName,
		Active:          d.Active,
		LastUpdate:      lastUpdate,
	}, nil
}

type teamDTO struct {
	ID         int64   `json:"id,omitempty"`
	PoolID     int64   `json:"pool_id"`
	TeamName   string  `json:"team_name"`
	TeamAlias  *string `json:"team_alias"`
	ClubID     *string `json:"club_id"`
	Active     bool    `json:"active"`
	LastUpdate *string `json:"last_update,omitempty"`
}

func (c timeCodec) teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:         t.ID,
		PoolID:     t.PoolID,
		TeamName:   t.TeamName,
		TeamAlias:  t.TeamAlias,
		ClubID:     t.ClubID,
		Active:     t.Active,
		LastUpdate: c.formatPtr(t.LastUpdate),
	}
}

func (c timeCodec) teamFromDTO(d teamDTO) (team.Team, error) {
	lastUpdate, err := c.parsePtr(d.LastUpdate)
	if err != nil {
		return team.Team{}, fmt.Errorf("team %d last_update: %w", d.ID, err)
	}
	return team.Team{
		ID:         d.ID,
		PoolID:     d.PoolID,
		TeamName:   d.TeamName,
		TeamAlias:  d.TeamAlias,
		ClubID:     d.ClubID,
		Active:     d.Active,
		LastUpdate: lastUpdate,
	}, nil
}

type matchDTO struct {
	ID         int64   `json:"id,omitempty"`
	MatchCode  string  `json:"match_code"`
	LeagueCode string  `json:"league_code"`
	PoolID     int64   `json:"pool_id"`
	TeamIDA    int64   `json:"team_id_a"`
	TeamIDB    int64   `json:"team_id_b"`
	MatchDate  *string `json:"match_date"`
	Set        *string `json:"set"`
	Score      *string `json:"score"`
	Status     string  `json:"status"`
	Venue      *string `json:"venue"`
	Referee1   *string `json:"referee1"`
	Referee2   *string `json:"referee2"`
	LiveCode   *int64  `json:"live_code"`
	Active     bool    `json:"active"`
	LastUpdate *string `json:"last_update,omitempty"`
}

func (c timeCodec) matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:         m.ID,
		MatchCode:  m.MatchCode,
		LeagueCode: m.LeagueCode,
		PoolID:     m.PoolID,
		TeamIDA:    m.TeamIDA,
		TeamIDB:    m.TeamIDB,
		MatchDate:  c.formatPtr(m.MatchDate),
		Set:        m.Set,
		Score:      m.Score,
		Status:     m.Status,
		Venue:      m.Venue,
		Referee1:   m.Referee1,
		Referee2:   m.Referee2,
		LiveCode:   m.LiveCode,
		Active:     m.Active,
		LastUpdate: c.formatPtr(m.LastUpdate),
	}
}

func (c timeCodec) matchFromDTO(d matchDTO) (match.Match, error) {
	matchDate, err := c.parsePtr(d.MatchDate)
	if err != nil {
		return match.Match{}, fmt.Errorf("match %d match_date: %w", d.ID, err)
	}
	lastUpdate, err := c.parsePtr(d.LastUpdate)
	if err != nil {
		return match.Match{}, fmt.Errorf("match %d last_update: %w", d.ID, err)
	}
	return match.Match{
		ID:         d.ID,
		MatchCode:  d.MatchCode,
		LeagueCode: d.LeagueCode,
		PoolID:     d.PoolID,
		TeamIDA:    d.TeamIDA,
		TeamIDB:    d.TeamIDB,
		MatchDate:  matchDate,
		Set:        d.Set,
		Score:      d.Score,
		Status:     d.Status,
		Venue:      d.Venue,
		Referee1:   d.Referee1,
		Referee2:   d.Referee2,
		LiveCode:   d.LiveCode,
		Active:     d.Active,
		LastUpdate: lastUpdate,
	}, nil
}

func convertAll[D, T any](items []D, convert func(D) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		converted, err := convert(item)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}
