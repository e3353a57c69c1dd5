package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
)

func TestExecutionLogRepository_ListRecentNewestFirst(t *testing.T) {
	t.Parallel()

	repo, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	base := time.Date(2024, 10, 5, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		err := repo.Insert(ctx, executionlog.ExecutionLog{
			ID:        id,
			StartTime: base.Add(time.Duration(i) * time.Hour),
			Duration:  10 + i,
			Status:    executionlog.StatusSuccess,
			Changes:   "pool created",
		})
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 logs, got=%d", len(got))
	}
	if got[0].ID != "run-c" || got[1].ID != "run-b" {
		t.Fatalf("expected newest first, got=%s,%s", got[0].ID, got[1].ID)
	}
	if got[0].Duration != 12 || got[0].Changes != "pool created" {
		t.Fatalf("unexpected decoded log=%+v", got[0])
	}
	if !got[0].StartTime.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected start time=%v", got[0].StartTime)
	}
}

func TestExecutionLogRepository_InsertRequiresID(t *testing.T) {
	t.Parallel()

	repo, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.Insert(context.Background(), executionlog.ExecutionLog{Status: executionlog.StatusFailed}); err == nil {
		t.Fatalf("expected error without id")
	}
}
