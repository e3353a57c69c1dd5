package executionlog

import "time"

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// ExecutionLog is the audit record written once per scrape run.
type ExecutionLog struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`
	Changes   string    `json:"changes"`
}
