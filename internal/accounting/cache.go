package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

const (
	cacheVersionKey = "reports:version"
	bumpChannel     = "reports.bump"
)

// ReportCache stores generated reports in Redis under a global version so a
// single Bump invalidates every cached report.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReportCache builds the cache. A nil client disables caching.
func NewReportCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportCache{client: client, ttl: ttl, logger: logger}
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising it when missing.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey joins the parts and appends the current version.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// Fetch returns the cached report for key or generates and stores it. The
// boolean reports a cache hit. Redis failures degrade to generating the
// report uncached; only loader errors are returned.
func (c *ReportCache) Fetch(ctx context.Context, key string, load func(context.Context) (reports.FinancialReport, error)) (reports.FinancialReport, bool, error) {
	if load == nil {
		return reports.FinancialReport{}, false, errors.New("accounting: report loader required")
	}
	if !c.enabled() {
		report, err := load(ctx)
		return report, false, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var report reports.FinancialReport
		if err := json.Unmarshal(payload, &report); err == nil {
			return report, true, nil
		}
		c.logger.Warn("discarding undecodable cached report", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("report cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	report, err := load(ctx)
	if err != nil {
		return reports.FinancialReport{}, false, err
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return report, false, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return report, false, nil
}

// Bump invalidates every cached report by incrementing the version. The new
// version is published for subscribers that keep derived caches.
func (c *ReportCache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, err
	}
	return ver, c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}
