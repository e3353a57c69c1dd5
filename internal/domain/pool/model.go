package pool

import (
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
)

const (
	DivisionRegional = "REG"
	DivisionNational = "NAT"
	DivisionPro      = "PRO"

	GenderMale   = "M"
	GenderFemale = "F"
)

// Pool is one competition group of a league season.
type Pool struct {
	ID              int64      `json:"id,omitempty"`
	PoolCode        string     `json:"pool_code" validate:"required"`
	LeagueCode      string     `json:"league_code" validate:"required"`
	Season          int        `json:"season" validate:"required"`
	PoolName        string     `json:"pool_name" validate:"required"`
	DivisionCode    string     `json:"division_code" validate:"required"`
	DivisionName    string     `json:"division_name" validate:"required"`
	Gender          *string    `json:"gender"`
	RawDivisionName string     `json:"raw_division_name"`
	LeagueName      string     `json:"league_name"`
	Active          bool       `json:"active"`
	LastUpdate      *time.Time `json:"last_update,omitempty"`
}

// Key is the natural key of a pool.
type Key struct {
	PoolCode   string
	LeagueCode string
	Season     int
}

func (p Pool) Key() Key {
	return Key{PoolCode: p.PoolCode, LeagueCode: p.LeagueCode, Season: p.Season}
}

var MutableFields = []string{
	"pool_name",
	"division_code",
	"division_name",
	"gender",
	"raw_division_name",
	"league_name",
}

// Diff compares the mutable fields of a stored pool against an observed one.
func Diff(existing, candidate Pool) changeset.List {
	var b changeset.Builder
	b.String("pool_name", existing.PoolName, candidate.PoolName)
	b.String("division_code", existing.DivisionCode, candidate.DivisionCode)
	b.String("division_name", existing.DivisionName, candidate.DivisionName)
	b.OptionalString("gender", existing.Gender, candidate.Gender)
	b.String("raw_division_name", existing.RawDivisionName, candidate.RawDivisionName)
	b.String("league_name", existing.LeagueName, candidate.LeagueName)
	return b.Changes()
}
