// Package ledger holds the read-only ledger records consumed by the statement engine.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
	AccountTypeCost      AccountType = "COST"
)

// AccountTypes lists every supported account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
	AccountTypeCost,
}

// ParseAccountType normalises a textual account type.
func ParseAccountType(raw string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AccountTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("ledger: unknown account type %q", raw)
}

// Account models a chart of accounts record as stored by the ledger.
type Account struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	ParentCode    *string     `json:"parentCode,omitempty"`
	RootCode      string      `json:"rootCode"`
	Level         int         `json:"level"`
	IsDebitNormal bool        `json:"isDebitNormal"`
	Type          AccountType `json:"accountType"`
	Active        bool        `json:"active"`
}

// IsRoot reports whether the record marks itself as a root, either by having
// no parent or by pointing at itself.
func (a Account) IsRoot() bool {
	return a.ParentCode == nil || *a.ParentCode == "" || *a.ParentCode == a.Code
}

// LineEntry stores one debit or credit leg of a voucher.
type LineEntry struct {
	AccountCode string          `json:"accountCode"`
	Amount      decimal.Decimal `json:"amount"`
	IsDebit     bool            `json:"isDebit"`
	VoucherID   string          `json:"voucherId"`
	VoucherDate time.Time       `json:"voucherDate"`
	Deleted     bool            `json:"deleted"`
}

// Period represents an inclusive reporting window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects inverted windows.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidPeriod)
	}
	if p.Start.After(p.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidPeriod, p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
	}
	return nil
}

// Prior returns the same calendar span one year earlier. Each end is shifted
// on its own and Feb 29 clamps to Feb 28, keeping the time of day.
func (p Period) Prior() Period {
	return Period{Start: yearEarlier(p.Start), End: yearEarlier(p.End)}
}

func yearEarlier(t time.Time) time.Time {
	shifted := t.AddDate(-1, 0, 0)
	if shifted.Month() != t.Month() {
		// normalised into the next month; step back to the last day of the target one
		shifted = shifted.AddDate(0, 0, -shifted.Day())
	}
	return shifted
}

// StartSecond exposes the window start as unix seconds.
func (p Period) StartSecond() int64 { return p.Start.Unix() }

// EndSecond exposes the window end as unix seconds.
func (p Period) EndSecond() int64 { return p.End.Unix() }

// String renders the period as YYYY-MM-DD..YYYY-MM-DD.
func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// ErrInvalidPeriod indicates an empty or inverted reporting window.
var ErrInvalidPeriod = errors.New("ledger: invalid period")
