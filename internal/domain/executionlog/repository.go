package executionlog

import "context"

// Repository persists execution logs.
type Repository interface {
	Insert(ctx context.Context, item ExecutionLog) error
	ListRecent(ctx context.Context, limit int) ([]ExecutionLog, error)
}
