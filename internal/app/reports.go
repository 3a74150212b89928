package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerbook/ledgerbook/internal/accounting"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

// LoadStatements reads the statement catalogue from REPORT_CONFIG_PATH, or
// the embedded default when no path is configured.
func LoadStatements(cfg *Config, logger *slog.Logger) (*reports.Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg != nil && cfg.ReportConfigPath != "" {
		logger.Info("loading statement config", slog.String("path", cfg.ReportConfigPath))
		return reports.LoadConfigFile(logger, cfg.ReportConfigPath)
	}
	return reports.DefaultConfig(logger)
}

// ReportServiceParams groups the collaborators of the statement service.
type ReportServiceParams struct {
	Config     *Config
	Logger     *slog.Logger
	Statements *reports.Config
	Accounts   accounting.AccountSource
	Entries    accounting.EntrySource
	Redis      *redis.Client
	Registerer prometheus.Registerer
}

// NewReportService wires the statement service with its optional cache and
// metrics. A nil Redis client or a zero TTL disables caching.
func NewReportService(p ReportServiceParams) *accounting.Service {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := accounting.Options{Metrics: accounting.NewMetrics(p.Registerer)}
	if p.Config != nil {
		opts.FetchConcurrency = p.Config.ReportFetchConcurrency
	}
	if p.Redis != nil && p.Config.ReportCacheEnabled() {
		opts.Cache = accounting.NewReportCache(p.Redis, p.Config.ReportCacheTTL, logger)
	}
	return accounting.NewService(logger, p.Accounts, p.Entries, p.Statements, opts)
}
