// Package accounting serves financial statements for a ledger book.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

var (
	// ErrUpstreamUnavailable wraps failures of the ledger data store.
	ErrUpstreamUnavailable = errors.New("accounting: upstream unavailable")
	// ErrBookRequired indicates a request without a book identifier.
	ErrBookRequired = errors.New("accounting: book id required")
	// ErrInvalidPeriod re-exports the ledger period validation error.
	ErrInvalidPeriod = ledger.ErrInvalidPeriod
)

// AccountSource lists the chart of accounts of a book.
type AccountSource interface {
	// FetchAccounts returns active accounts of the requested types in no
	// particular order.
	FetchAccounts(ctx context.Context, bookID string, types []ledger.AccountType) ([]ledger.Account, error)
}

// EntryQuery filters line entries. Entries are returned when their voucher
// date falls in [StartSecond, EndSecond]; StartSecond zero means all history.
type EntryQuery struct {
	BookID         string
	Types          []ledger.AccountType
	StartSecond    int64
	EndSecond      int64
	IncludeDeleted bool
}

// EntrySource lists voucher line entries of a book.
type EntrySource interface {
	FetchLineEntries(ctx context.Context, q EntryQuery) ([]ledger.LineEntry, error)
}

// ReportRequest asks for one statement of one book.
type ReportRequest struct {
	BookID string
	Type   reports.ReportType
	Period ledger.Period
}

// Validate checks the request before any data is fetched.
func (r ReportRequest) Validate() error {
	if r.BookID == "" {
		return ErrBookRequired
	}
	if _, err := reports.ParseReportType(string(r.Type)); err != nil {
		return err
	}
	return r.Period.Validate()
}

// CacheKey identifies the request inside the report cache. Bounds are keyed
// to the second, matching the inclusive window the entry query uses.
func (r ReportRequest) CacheKey() []string {
	return []string{
		"reports",
		r.BookID,
		string(r.Type),
		strconv.FormatInt(r.Period.StartSecond(), 10),
		strconv.FormatInt(r.Period.EndSecond(), 10),
	}
}

// ParsePeriod reads inclusive YYYY-MM-DD dates; the end date covers its whole
// day.
func ParsePeriod(start, end string) (ledger.Period, error) {
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("%w: start: %v", ErrInvalidPeriod, err)
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("%w: end: %v", ErrInvalidPeriod, err)
	}
	period := ledger.Period{Start: from, End: to.Add(24*time.Hour - time.Second)}
	return period, period.Validate()
}
