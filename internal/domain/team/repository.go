package team

import "context"

// Repository describes team storage needs from use cases.
type Repository interface {
	FindByKey(ctx context.Context, key Key) (Team, bool, error)
	ListActive(ctx context.Context, poolID int64) ([]Team, error)
	Create(ctx context.Context, item Team) (Team, error)
	Update(ctx context.Context, item Team, changes []string) (Team, error)
	Deactivate(ctx context.Context, id int64) error
}
