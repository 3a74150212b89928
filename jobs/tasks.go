package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-generates statements into the report cache.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsInvalidate drops every cached statement.
	TaskReportsInvalidate = "reports:invalidate"
)

// ReportsWarmupPayload scopes a warmup run. Empty fields fall back to the
// worker configuration.
type ReportsWarmupPayload struct {
	Books []string `json:"books,omitempty"`
	Types []string `json:"types,omitempty"`
}

// ReportsInvalidatePayload records why the cache was dropped.
type ReportsInvalidatePayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewReportsWarmupTask constructs a warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewReportsInvalidateTask constructs a cache invalidation task.
func NewReportsInvalidateTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsInvalidatePayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsInvalidate, data), nil
}
