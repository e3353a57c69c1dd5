package pool

import "context"

// Repository describes pool storage needs from use cases.
type Repository interface {
	FindByKey(ctx context.Context, key Key) (Pool, bool, error)
	ListActive(ctx context.Context, leagueCode string) ([]Pool, error)
	Create(ctx context.Context, item Pool) (Pool, error)
	Update(ctx context.Context, item Pool, changes []string) (Pool, error)
	Deactivate(ctx context.Context, id int64) error
}
