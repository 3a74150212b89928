package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerbook/ledgerbook/internal/accounting"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmupTimeout = 20 * time.Second

// ReportsWarmupJob generates month-to-date statements so the first reader of
// the day is served from cache.
type ReportsWarmupJob struct {
	Reports accounting.ReportGenerator
	Books   []string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(generator accounting.ReportGenerator, books []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: generator,
		Books:   books,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks. Every book and type is attempted;
// failures are joined into the returned error.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("reports warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	types, err := warmupTypes(payload.Types)
	if err != nil {
		return fmt.Errorf("reports warmup: %w: %w", err, asynq.SkipRetry)
	}
	books := payload.Books
	if len(books) == 0 {
		books = j.Books
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if len(books) == 0 {
		logger.Info("no books configured for warmup")
		return nil
	}

	started := j.now()
	period := MonthToDate(started)
	logger.Info("starting report warmup", slog.Int("books", len(books)), slog.String("period", period.String()))

	var errs []error
	warmed := 0
	for _, book := range books {
		for _, rt := range types {
			if err := j.warm(ctx, book, rt, period); err != nil {
				logger.Error("warm report", slog.String("book", book), slog.String("report", string(rt)), slog.Any("error", err))
				errs = append(errs, fmt.Errorf("%s/%s: %w", book, rt, err))
				continue
			}
			j.metrics().AddWarmed(string(rt), 1)
			warmed++
		}
	}

	logger.Info("completed report warmup", slog.Int("reports", warmed), slog.Int("failed", len(errs)), slog.Duration("duration", j.now().Sub(started)))
	return errors.Join(errs...)
}

func (j *ReportsWarmupJob) warm(ctx context.Context, book string, rt reports.ReportType, period ledger.Period) error {
	warmCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()
	_, err := j.Reports.Generate(warmCtx, accounting.ReportRequest{BookID: book, Type: rt, Period: period})
	return err
}

// MonthToDate returns the period from the first day of now's month through
// the end of now's day.
func MonthToDate(now time.Time) ledger.Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return ledger.Period{Start: start, End: day.Add(24*time.Hour - time.Second)}
}

func warmupTypes(raw []string) ([]reports.ReportType, error) {
	if len(raw) == 0 {
		return reports.ReportTypes, nil
	}
	out := make([]reports.ReportType, 0, len(raw))
	for _, r := range raw {
		rt, err := reports.ParseReportType(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
