package match

import (
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
)

const (
	StatusUpcoming = "UPCOMING"
	StatusFinished = "FINISHED"

	FieldMatchDate = "match_date"
)

// Match is one fixture between two teams of a pool.
type Match struct {
	ID         int64      `json:"id,omitempty"`
	MatchCode  string     `json:"match_code" validate:"required"`
	LeagueCode string     `json:"league_code" validate:"required"`
	PoolID     int64      `json:"pool_id" validate:"required"`
	TeamIDA    int64      `json:"team_id_a" validate:"required"`
	TeamIDB    int64      `json:"team_id_b" validate:"required"`
	MatchDate  *time.Time `json:"match_date" validate:"required"`
	Set        *string    `json:"set"`
	Score      *string    `json:"score"`
	Status     string     `json:"status" validate:"required,oneof=UPCOMING FINISHED"`
	Venue      *string    `json:"venue"`
	Referee1   *string    `json:"referee1"`
	Referee2   *string    `json:"referee2"`
	LiveCode   *int64     `json:"live_code"`
	Active     bool       `json:"active"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

type Key struct {
	LeagueCode string
	MatchCode  string
}

func (m Match) Key() Key {
	return Key{LeagueCode: m.LeagueCode, MatchCode: m.MatchCode}
}

// TeamsQuery locates a match by its pool, both teams and its kickoff.
type TeamsQuery struct {
	PoolID    int64
	TeamIDA   int64
	TeamIDB   int64
	MatchDate time.Time
}

// StartedQuery selects matches whose kickoff is at or before CurrentTime.
type StartedQuery struct {
	Status      string
	Active      bool
	CurrentTime time.Time
}

// MutableFields leaves pool_id out: a match keeps the pool it was first stored under.
var MutableFields = []string{
	"team_id_a",
	"team_id_b",
	FieldMatchDate,
	"set",
	"score",
	"status",
	"venue",
	"referee1",
	"referee2",
	"live_code",
}

type DiffOptions struct {
	// SkipMatchDate leaves match_date out of the comparison.
	SkipMatchDate bool
}

func Diff(existing, candidate Match, opts DiffOptions) changeset.List {
	var b changeset.Builder
	b.Int("team_id_a", existing.TeamIDA, candidate.TeamIDA)
	b.Int("team_id_b", existing.TeamIDB, candidate.TeamIDB)
	if !opts.SkipMatchDate {
		b.Time(FieldMatchDate, existing.MatchDate, candidate.MatchDate)
	}
	b.OptionalString("set", existing.Set, candidate.Set)
	b.OptionalString("score", existing.Score, candidate.Score)
	b.String("status", existing.Status, candidate.Status)
	b.OptionalString("venue", existing.Venue, candidate.Venue)
	b.OptionalString("referee1", existing.Referee1, candidate.Referee1)
	b.OptionalString("referee2", existing.Referee2, candidate.Referee2)
	b.Int("live_code", changeset.Deref(existing.LiveCode), changeset.Deref(candidate.LiveCode))
	return b.Changes()
}

// StatusFor derives the status from the published set and score.
func StatusFor(set, score *string) string {
	if set != nil && score != nil {
		return StatusFinished
	}
	return StatusUpcoming
}

// NormalizeSet rewrites "3/1" as "3-1"; blank sets are nil.
func NormalizeSet(raw string) *string {
	v := changeset.NonEmpty(raw)
	if v == nil {
		return nil
	}
	out := strings.ReplaceAll(*v, "/", "-")
	return &out
}

func IsFinished(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusFinished)
}
