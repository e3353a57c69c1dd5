// Package boltstore keeps execution logs in a local bbolt file for deployments without Postgres.
package boltstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketExecutionLogs = "execution_logs"
	// keyTimeLayout is fixed width so keys sort chronologically.
	keyTimeLayout = "20060102T150405.000000000"
)

type ExecutionLogRepository struct {
	db *bolt.DB
}

var _ executionlog.Repository = (*ExecutionLogRepository)(nil)

func Open(path string) (*ExecutionLogRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketExecutionLogs)); err != nil {
			return fmt.Errorf("create execution logs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &ExecutionLogRepository{db: db}, nil
}

func (r *ExecutionLogRepository) Close() error {
	return r.db.Close()
}

func (r *ExecutionLogRepository) Insert(ctx context.Context, item executionlog.ExecutionLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("execution log id is required")
	}

	data, err := sonic.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal execution log: %w", err)
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketExecutionLogs))
		return b.Put(executionLogKey(item), data)
	})
}

// ListRecent returns the newest logs first.
func (r *ExecutionLogRepository) ListRecent(ctx context.Context, limit int) ([]executionlog.ExecutionLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []executionlog.ExecutionLog
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketExecutionLogs)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var item executionlog.ExecutionLog
			if err := sonic.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshal execution log %s: %w", k, err)
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func executionLogKey(item executionlog.ExecutionLog) []byte {
	return []byte(item.StartTime.UTC().Format(keyTimeLayout) + "_" + item.ID)
}
