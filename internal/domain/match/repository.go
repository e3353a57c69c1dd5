package match

import "context"

// Repository describes match storage needs from use cases.
type Repository interface {
	FindByKey(ctx context.Context, key Key) (Match, bool, error)
	FindByTeams(ctx context.Context, query TeamsQuery) (Match, bool, error)
	ListActive(ctx context.Context, poolID int64) ([]Match, error)
	ListStarted(ctx context.Context, query StartedQuery) ([]Match, error)
	Create(ctx context.Context, item Match) (Match, error)
	Update(ctx context.Context, item Match, changes []string) (Match, error)
	Deactivate(ctx context.Context, id int64) error
}
