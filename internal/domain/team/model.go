package team

import (
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
)

// Team is a club's entry in one pool.
type Team struct {
	ID         int64      `json:"id,omitempty"`
	PoolID     int64      `json:"pool_id" validate:"required"`
	TeamName   string     `json:"team_name" validate:"required"`
	TeamAlias  *string    `json:"team_alias"`
	ClubID     *string    `json:"club_id"`
	Active     bool       `json:"active"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

type Key struct {
	PoolID   int64
	TeamName string
}

func (t Team) Key() Key {
	return Key{PoolID: t.PoolID, TeamName: t.TeamName}
}

var MutableFields = []string{"club_id"}

func Diff(existing, candidate Team) changeset.List {
	var b changeset.Builder
	b.OptionalString("club_id", existing.ClubID, candidate.ClubID)
	return b.Changes()
}
