package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
	qb "github.com/riskibarqy/volley-sync/internal/platform/querybuilder"
)

const executionLogsTable = "execution_logs"

type ExecutionLogRepository struct {
	db *sqlx.DB
}

func NewExecutionLogRepository(db *sqlx.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db}
}

var _ executionlog.Repository = (*ExecutionLogRepository)(nil)

func (r *ExecutionLogRepository) Insert(ctx context.Context, item executionlog.ExecutionLog) error {
	query, args, err := insertExecutionLogQuery(item)
	if err != nil {
		return fmt.Errorf("build insert execution log query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert execution log: %w", err)
	}
	return nil
}

func (r *ExecutionLogRepository) ListRecent(ctx context.Context, limit int) ([]executionlog.ExecutionLog, error) {
	query, args, err := listRecentExecutionLogsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build list execution logs query: %w", err)
	}

	var rows []executionLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select execution logs: %w", err)
	}

	out := make([]executionlog.ExecutionLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, executionlog.ExecutionLog{
			ID:        row.ID,
			StartTime: row.StartTime,
			Duration:  row.Duration,
			Status:    row.Status,
			Changes:   row.Changes.String,
		})
	}
	return out, nil
}

func insertExecutionLogQuery(item executionlog.ExecutionLog) (string, []any, error) {
	if strings.TrimSpace(item.ID) == "" {
		return "", nil, fmt.Errorf("execution log id is required")
	}
	model := executionLogInsertModel{
		ID:        item.ID,
		StartTime: item.StartTime.UTC(),
		Duration:  item.Duration,
		Status:    item.Status,
		Changes:   optionalString(item.Changes),
	}
	return qb.InsertModel(executionLogsTable, model, "")
}

func listRecentExecutionLogsQuery(limit int) (string, []any, error) {
	return qb.Select("id", "start_time", "duration", "status", "changes", "created_at").
		From(executionLogsTable).
		OrderBy("start_time DESC", "id").
		Limit(limit).
		ToSQL()
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
