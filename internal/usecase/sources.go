package usecase

import (
	"context"
	"time"
)

// CalendarRequest identifies one pool calendar export.
type CalendarRequest struct {
	RawSeason  string
	LeagueCode string
	PoolCode   string
}

// CalendarRow is one line of a federation calendar export with blank cells as nil.
type CalendarRow struct {
	Line       int
	LeagueCode string
	MatchCode  string
	ClubIDA    string
	ClubIDB    string
	TeamNameA  string
	TeamNameB  string
	Date       string
	Time       string
	Set        *string
	Score      *string
	Venue      *string
	Referee1   *string
	Referee2   *string
}

type CalendarSource interface {
	FetchCalendar(ctx context.Context, req CalendarRequest) ([]CalendarRow, error)
}

type NationalPoolLink struct {
	PoolCode string
	PoolName string
	Href     string
}

type NationalListing struct {
	RawSeason string
	Pools     []NationalPoolLink
}

type RegionalLeague struct {
	LeagueCode string
	LeagueName string
	URL        string
}

type RegionalPoolLink struct {
	PoolCode        string
	PoolName        string
	RawSeason       string
	RawDivisionName string
}

// FederationDirectory lists the competitions published on the federation site.
type FederationDirectory interface {
	NationalListing(ctx context.Context) (NationalListing, error)
	RegionalLeagues(ctx context.Context) ([]RegionalLeague, error)
	RegionalPools(ctx context.Context, league RegionalLeague) ([]RegionalPoolLink, error)
}

// FeedMatch is one entry of the professional league calendar feed.
type FeedMatch struct {
	MatchCode string
	MatchDate time.Time
	Set       string
}

// LiveMatch is one match listed on the professional league live-score page.
type LiveMatch struct {
	LiveCode  int64
	HomeTeam  string
	GuestTeam string
	MatchDate time.Time
}

type ProLeagueSource interface {
	CalendarFeed(ctx context.Context, feedURL string) ([]FeedMatch, error)
	LiveMatches(ctx context.Context, pageURL string) ([]LiveMatch, error)
}

// DivisionStandardizer maps a free-text division label to a canonical division and gender.
type DivisionStandardizer interface {
	Standardize(raw string) (division string, gender *string)
}

// TeamAliasResolver maps a short team label to its full name for a gender.
type TeamAliasResolver interface {
	FullName(name, gender string) (string, bool)
}
