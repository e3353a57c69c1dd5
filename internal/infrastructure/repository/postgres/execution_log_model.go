package postgres

import (
	"database/sql"
	"time"
)

type executionLogTableModel struct {
	ID        string         `db:"id"`
	StartTime time.Time      `db:"start_time"`
	Duration  int            `db:"duration"`
	Status    string         `db:"status"`
	Changes   sql.NullString `db:"changes"`
	CreatedAt time.Time      `db:"created_at"`
}

type executionLogInsertModel struct {
	ID        string    `db:"id"`
	StartTime time.Time `db:"start_time"`
	Duration  int       `db:"duration"`
	Status    string    `db:"status"`
	Changes   *string   `db:"changes"`
}
