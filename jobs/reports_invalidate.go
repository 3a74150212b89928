package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
)

// CacheInvalidator drops cached reports and returns the new cache version.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// ReportsInvalidateJob bumps the report cache version, typically after a
// bulk voucher import.
type ReportsInvalidateJob struct {
	Cache   CacheInvalidator
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsInvalidateJob wires the invalidation handler.
func NewReportsInvalidateJob(cache CacheInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsInvalidateJob {
	return &ReportsInvalidateJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes cache invalidation tasks.
func (j *ReportsInvalidateJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Cache == nil {
		return errors.New("reports invalidate: handler not configured")
	}
	var payload ReportsInvalidatePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskReportsInvalidate)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ver, err := j.Cache.Invalidate(ctx)
	if err != nil {
		logger.Error("invalidate report cache", slog.String("job", TaskReportsInvalidate), slog.Any("error", err))
		return err
	}
	logger.Info("report cache invalidated", slog.String("job", TaskReportsInvalidate), slog.Int64("version", ver), slog.String("reason", payload.Reason))
	return nil
}
