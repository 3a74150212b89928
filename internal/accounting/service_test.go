package accounting

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
	_ "github.com/ledgerbook/ledgerbook/testing"
)

type stubLedger struct {
	mu           sync.Mutex
	accounts     []ledger.Account
	entries      []ledger.LineEntry
	err          error
	accountCalls int
	queries      []EntryQuery
}

func (s *stubLedger) FetchAccounts(_ context.Context, _ string, types []ledger.AccountType) ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountCalls++
	if s.err != nil {
		return nil, s.err
	}
	wanted := typeSet(types)
	var out []ledger.Account
	for _, a := range s.accounts {
		if wanted[a.Type] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubLedger) FetchLineEntries(_ context.Context, q EntryQuery) ([]ledger.LineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	accType := make(map[string]ledger.AccountType, len(s.accounts))
	for _, a := range s.accounts {
		accType[a.Code] = a.Type
	}
	wanted := typeSet(q.Types)
	var out []ledger.LineEntry
	for _, e := range s.entries {
		sec := e.VoucherDate.Unix()
		if !wanted[accType[e.AccountCode]] || sec < q.StartSecond || sec > q.EndSecond {
			continue
		}
		if e.Deleted && !q.IncludeDeleted {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *stubLedger) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountCalls, len(s.queries)
}

func typeSet(types []ledger.AccountType) map[ledger.AccountType]bool {
	out := make(map[ledger.AccountType]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out
}

func acct(code, parent string, typ ledger.AccountType, debitNormal bool) ledger.Account {
	a := ledger.Account{Code: code, Name: "Account " + code, Type: typ, IsDebitNormal: debitNormal, Active: true}
	if parent != "" {
		p := parent
		a.ParentCode = &p
	}
	return a
}

func line(voucher, code string, amount int64, debit bool, date time.Time) ledger.LineEntry {
	return ledger.LineEntry{
		AccountCode: code,
		Amount:      decimal.NewFromInt(amount),
		IsDebit:     debit,
		VoucherID:   voucher,
		VoucherDate: date,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() *stubLedger {
	return &stubLedger{
		accounts: []ledger.Account{
			acct("2501", "2", ledger.AccountTypeLiability, false),
			acct("1001", "1", ledger.AccountTypeAsset, true),
			acct("1", "", ledger.AccountTypeAsset, true),
			acct("1601", "1", ledger.AccountTypeAsset, true),
			acct("2", "2", ledger.AccountTypeLiability, false),
			acct("3", "", ledger.AccountTypeEquity, false),
			acct("3001", "3", ledger.AccountTypeEquity, false),
			acct("3999", "39", ledger.AccountTypeEquity, false),
			acct("4", "", ledger.AccountTypeRevenue, false),
			acct("4001", "4", ledger.AccountTypeRevenue, false),
			acct("5", "", ledger.AccountTypeExpense, true),
			acct("5602", "5", ledger.AccountTypeExpense, true),
		},
		entries: []ledger.LineEntry{
			line("v1", "1001", 600, true, date(2023, time.March, 1)),
			line("v1", "3001", 600, false, date(2023, time.March, 1)),
			line("v2", "1601", 400, true, date(2024, time.August, 1)),
			line("v2", "2501", 400, false, date(2024, time.August, 1)),
			line("v3", "1001", 250, true, date(2024, time.September, 1)),
			line("v3", "4001", 250, false, date(2024, time.September, 1)),
			line("v4", "5602", 50, true, date(2024, time.October, 1)),
			line("v4", "1001", 50, false, date(2024, time.October, 1)),
		},
	}
}

func newTestService(t *testing.T, store *stubLedger, opts Options) *Service {
	t.Helper()
	cfg, err := reports.DefaultConfig(nil)
	require.NoError(t, err)
	svc := NewService(nil, store, store, cfg, opts)
	svc.WithNow(func() time.Time { return date(2025, time.January, 15) })
	return svc
}

func year2024() ledger.Period {
	return ledger.Period{Start: date(2024, time.January, 1), End: date(2024, time.December, 31)}
}

func TestGenerateBalanceSheet(t *testing.T) {
	store := fixture()
	svc := newTestService(t, store, Options{})

	report, err := svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: reports.BalanceSheet, Period: year2024()})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, date(2025, time.January, 15), report.GeneratedAt)
	assert.Equal(t, "b1", report.Book.ID)
	assert.Equal(t, year2024().Prior(), report.PriorPeriod)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "3999")

	info := report.OtherInfo
	assert.True(t, info.Figures["totalAssets"].Equal(decimal.NewFromInt(1200)))
	assert.True(t, info.Figures["totalLiabilities"].Equal(decimal.NewFromInt(400)))
	assert.True(t, info.Figures["totalEquity"].Equal(decimal.NewFromInt(600)))
	assert.True(t, info.Figures["priorTotalAssets"].Equal(decimal.NewFromInt(600)))
	assert.False(t, info.Flags["balanced"])

	accountCalls, entryCalls := store.calls()
	assert.Equal(t, 1, accountCalls)
	assert.Equal(t, 6, entryCalls)
}

func TestGenerateIncomeStatementUsesFiscalYearHistory(t *testing.T) {
	store := fixture()
	svc := newTestService(t, store, Options{FetchConcurrency: 1})

	period := ledger.Period{Start: date(2024, time.September, 1), End: date(2024, time.September, 30)}
	report, err := svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: reports.IncomeStatement, Period: period})
	require.NoError(t, err)
	assert.True(t, report.OtherInfo.Figures["revenue"].Equal(decimal.NewFromInt(250)))
	assert.True(t, report.OtherInfo.Figures["netIncome"].Equal(decimal.NewFromInt(250)))

	starts := map[int64]bool{}
	for _, q := range store.queries {
		starts[q.StartSecond] = true
		assert.Len(t, q.Types, 1)
		assert.False(t, q.IncludeDeleted)
	}
	assert.Equal(t, map[int64]bool{
		date(2024, time.January, 1).Unix(): true,
		date(2023, time.January, 1).Unix(): true,
	}, starts)
}

func TestGenerateRejectsInvalidRequestsBeforeFetching(t *testing.T) {
	store := fixture()
	svc := newTestService(t, store, Options{})

	inverted := ledger.Period{Start: date(2024, time.December, 31), End: date(2024, time.January, 1)}
	_, err := svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: reports.BalanceSheet, Period: inverted})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.Generate(context.Background(), ReportRequest{Type: reports.BalanceSheet, Period: year2024()})
	assert.ErrorIs(t, err, ErrBookRequired)

	_, err = svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: "ledger", Period: year2024()})
	assert.ErrorIs(t, err, reports.ErrUnknownReportType)

	accountCalls, entryCalls := store.calls()
	assert.Zero(t, accountCalls)
	assert.Zero(t, entryCalls)
}

func TestGenerateWrapsUpstreamFailure(t *testing.T) {
	store := fixture()
	cause := errors.New("connection refused")
	store.err = cause
	svc := newTestService(t, store, Options{})

	_, err := svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: reports.CashFlow, Period: year2024()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestGenerateServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := fixture()
	cache := NewReportCache(client, time.Minute, nil)
	svc := newTestService(t, store, Options{Cache: cache})
	req := ReportRequest{BookID: "b1", Type: reports.BalanceSheet, Period: year2024()}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.OtherInfo.Figures["totalAssets"].Equal(decimal.NewFromInt(1200)))
	accountCalls, _ := store.calls()
	assert.Equal(t, 1, accountCalls)

	ver, err := svc.Invalidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	third, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	accountCalls, _ = store.calls()
	assert.Equal(t, 2, accountCalls)
}

func TestGenerateFlagsUnbalancedTrialBalance(t *testing.T) {
	cfg, err := reports.DefaultConfig(nil)
	require.NoError(t, err)
	run := func(store *stubLedger, typ reports.ReportType) string {
		buf := new(bytes.Buffer)
		logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		svc := NewService(logger, store, store, cfg, Options{})
		_, err := svc.Generate(context.Background(), ReportRequest{BookID: "b1", Type: typ, Period: year2024()})
		require.NoError(t, err)
		return buf.String()
	}

	out := run(fixture(), reports.CashFlow)
	assert.Contains(t, out, `"balanced":true`)
	assert.NotContains(t, out, "trial balance off")

	store := fixture()
	store.entries = append(store.entries, line("v5", "1001", 10, true, date(2024, time.November, 1)))
	out = run(store, reports.CashFlow)
	assert.Contains(t, out, `"balanced":false`)
	assert.Contains(t, out, "trial balance off")
	assert.Contains(t, out, `"endingDebit":"1310"`)

	out = run(store, reports.BalanceSheet)
	assert.NotContains(t, out, `"balanced"`)
}
