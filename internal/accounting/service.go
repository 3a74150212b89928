package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

const defaultFetchConcurrency = 4

// Options tunes optional Service collaborators.
type Options struct {
	FetchConcurrency int
	Cache            *ReportCache
	Metrics          *Metrics
}

// Service generates financial statements from ledger data.
type Service struct {
	accounts AccountSource
	entries  EntrySource
	config   *reports.Config
	cache    *ReportCache
	metrics  *Metrics
	logger   *slog.Logger
	limit    int
	now      func() time.Time
}

// NewService constructs the statement service.
func NewService(logger *slog.Logger, accounts AccountSource, entries EntrySource, config *reports.Config, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.FetchConcurrency
	if limit <= 0 {
		limit = defaultFetchConcurrency
	}
	return &Service{
		accounts: accounts,
		entries:  entries,
		config:   config,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   logger,
		limit:    limit,
		now:      time.Now,
	}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Generate builds the requested statement for the current period and the
// same span one year earlier. Invalid requests fail before any data is
// fetched; data store failures are wrapped in ErrUpstreamUnavailable.
func (s *Service) Generate(ctx context.Context, req ReportRequest) (reports.FinancialReport, error) {
	if s == nil || s.accounts == nil || s.entries == nil {
		return reports.FinancialReport{}, errors.New("accounting: service not initialised")
	}
	if err := req.Validate(); err != nil {
		return reports.FinancialReport{}, err
	}
	variant, err := s.config.Variant(req.Type)
	if err != nil {
		return reports.FinancialReport{}, err
	}

	load := func(ctx context.Context) (reports.FinancialReport, error) {
		return s.generate(ctx, req, variant)
	}
	if !s.cache.enabled() {
		return load(ctx)
	}
	key, err := s.cache.BuildKey(ctx, req.CacheKey()...)
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.String("book", req.BookID), slog.Any("error", err))
		return load(ctx)
	}
	report, hit, err := s.cache.Fetch(ctx, key, load)
	if err != nil {
		return reports.FinancialReport{}, err
	}
	s.metrics.observeCache(req.Type, hit)
	return report, nil
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	return s.cache.Bump(ctx)
}

// ledgerData is the fan-in of all fetches for one request.
type ledgerData struct {
	accounts []ledger.Account
	current  [][]ledger.LineEntry
	prior    [][]ledger.LineEntry
}

func (s *Service) generate(ctx context.Context, req ReportRequest, variant reports.Variant) (reports.FinancialReport, error) {
	started := s.now()
	current := req.Period
	prior := current.Prior()

	data, err := s.fetch(ctx, req.BookID, variant, current, prior)
	if err != nil {
		s.metrics.upstreamFailure(req.Type)
		s.logger.Error("report fetch failed",
			slog.String("book", req.BookID),
			slog.String("report", string(req.Type)),
			slog.Any("error", err))
		return reports.FinancialReport{}, err
	}

	sort.SliceStable(data.accounts, func(i, j int) bool {
		return data.accounts[i].Code < data.accounts[j].Code
	})
	accounts := forest.Build(s.logger, data.accounts)
	s.metrics.addWarnings(req.Type, len(accounts.Warnings))

	currentStmt := reports.BuildStatement(variant, accounts, flatten(data.current), current)
	priorStmt := reports.BuildStatement(variant, accounts, flatten(data.prior), prior)
	report := reports.Compose(variant, reports.Book{ID: req.BookID}, currentStmt, priorStmt)
	report.ID = uuid.New()
	report.GeneratedAt = s.now().UTC()
	report.Warnings = append([]string(nil), accounts.Warnings...)

	elapsed := s.now().Sub(started)
	s.metrics.observeBuild(req.Type, elapsed)
	attrs := []any{
		slog.String("book", req.BookID),
		slog.String("report", string(req.Type)),
		slog.String("period", current.String()),
		slog.Int("accounts", accounts.Len()),
		slog.Int("lines", reports.CountLines(report.GeneralLines)+reports.CountLines(report.DetailLines)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("elapsed", elapsed),
	}
	if coversLedger(variant) {
		attrs = append(attrs, slog.Bool("balanced", s.checkTrialBalance(req, accounts, flatten(data.current), currentStmt.Window)))
	}
	s.logger.Info("report generated", attrs...)
	return report, nil
}

// coversLedger reports whether the variant fetches every account type, so
// its entries must form a balanced trial balance.
func coversLedger(variant reports.Variant) bool {
	fetched := make(map[ledger.AccountType]bool)
	for _, t := range variant.AccountTypes() {
		fetched[t] = true
	}
	for _, t := range ledger.AccountTypes {
		if !fetched[t] {
			return false
		}
	}
	return true
}

// checkTrialBalance aggregates the raw entries over the account forest and
// compares debits with credits at every stage.
func (s *Service) checkTrialBalance(req ReportRequest, accounts *forest.Forest, entries []ledger.LineEntry, window reports.Window) bool {
	totals := reports.Totals(reports.Aggregate(accounts, entries, window))
	if totals.Balanced() {
		return true
	}
	s.logger.Warn("trial balance off",
		slog.String("book", req.BookID),
		slog.String("report", string(req.Type)),
		slog.String("period", req.Period.String()),
		slog.String("endingDebit", totals.EndingDebit.String()),
		slog.String("endingCredit", totals.EndingCredit.String()))
	return false
}

// fetch issues the account query and one entry query per account type and
// period concurrently, bounded by the configured limit.
func (s *Service) fetch(ctx context.Context, bookID string, variant reports.Variant, current, prior ledger.Period) (ledgerData, error) {
	types := variant.AccountTypes()
	data := ledgerData{
		current: make([][]ledger.LineEntry, len(types)),
		prior:   make([][]ledger.LineEntry, len(types)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	g.Go(func() error {
		accounts, err := s.accounts.FetchAccounts(gctx, bookID, types)
		if err != nil {
			return fmt.Errorf("%w: fetch accounts: %w", ErrUpstreamUnavailable, err)
		}
		data.accounts = accounts
		return nil
	})
	for i, t := range types {
		g.Go(func() error {
			entries, err := s.entries.FetchLineEntries(gctx, entryQuery(bookID, t, variant, current))
			if err != nil {
				return fmt.Errorf("%w: fetch %s entries for %s: %w", ErrUpstreamUnavailable, t, current, err)
			}
			data.current[i] = entries
			return nil
		})
		g.Go(func() error {
			entries, err := s.entries.FetchLineEntries(gctx, entryQuery(bookID, t, variant, prior))
			if err != nil {
				return fmt.Errorf("%w: fetch %s entries for %s: %w", ErrUpstreamUnavailable, t, prior, err)
			}
			data.prior[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ledgerData{}, err
	}
	return data, nil
}

func entryQuery(bookID string, t ledger.AccountType, variant reports.Variant, period ledger.Period) EntryQuery {
	q := EntryQuery{
		BookID:    bookID,
		Types:     []ledger.AccountType{t},
		EndSecond: period.EndSecond(),
	}
	if start := variant.HistoryStart(period); !start.IsZero() {
		q.StartSecond = start.Unix()
	}
	return q
}

func flatten(parts [][]ledger.LineEntry) []ledger.LineEntry {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]ledger.LineEntry, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
