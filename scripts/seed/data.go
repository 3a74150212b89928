package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

type seedAccount struct {
	code   string
	name   string
	parent string
	typ    ledger.AccountType
}

// demoChart matches the codes referenced by the embedded statement templates.
var demoChart = []seedAccount{
	{"1", "Assets", "", ledger.AccountTypeAsset},
	{"1001", "Cash on Hand", "1", ledger.AccountTypeAsset},
	{"1002", "Bank Deposits", "1", ledger.AccountTypeAsset},
	{"1122", "Accounts Receivable", "1", ledger.AccountTypeAsset},
	{"1403", "Raw Materials", "1", ledger.AccountTypeAsset},
	{"1601", "Fixed Assets", "1", ledger.AccountTypeAsset},
	{"2", "Liabilities", "", ledger.AccountTypeLiability},
	{"2202", "Accounts Payable", "2", ledger.AccountTypeLiability},
	{"2211", "Payroll Payable", "2", ledger.AccountTypeLiability},
	{"2221", "Taxes Payable", "2", ledger.AccountTypeLiability},
	{"2501", "Long-term Loans", "2", ledger.AccountTypeLiability},
	{"3", "Equity", "", ledger.AccountTypeEquity},
	{"3001", "Paid-in Capital", "3", ledger.AccountTypeEquity},
	{"3103", "Current Year Profit", "3", ledger.AccountTypeEquity},
	{"3104", "Retained Earnings", "3", ledger.AccountTypeEquity},
	{"4", "Revenue", "", ledger.AccountTypeRevenue},
	{"4001", "Sales Revenue", "4", ledger.AccountTypeRevenue},
	{"4051", "Other Operating Revenue", "4", ledger.AccountTypeRevenue},
	{"5", "Costs and Expenses", "", ledger.AccountTypeExpense},
	{"5001", "Cost of Sales", "5", ledger.AccountTypeCost},
	{"5601", "Selling Expenses", "5", ledger.AccountTypeExpense},
	{"5602", "Administrative Expenses", "5", ledger.AccountTypeExpense},
	{"5603", "Finance Costs", "5", ledger.AccountTypeExpense},
	{"5801", "Income Tax Expense", "5", ledger.AccountTypeExpense},
}

func debitNormal(t ledger.AccountType) bool {
	switch t {
	case ledger.AccountTypeAsset, ledger.AccountTypeExpense, ledger.AccountTypeCost:
		return true
	default:
		return false
	}
}

// ledgerAccounts converts the demo chart into ledger records.
func ledgerAccounts() []ledger.Account {
	out := make([]ledger.Account, 0, len(demoChart))
	for _, a := range demoChart {
		acc := ledger.Account{
			Code:          a.code,
			Name:          a.name,
			RootCode:      a.code,
			IsDebitNormal: debitNormal(a.typ),
			Type:          a.typ,
			Active:        true,
		}
		if a.parent != "" {
			parent := a.parent
			acc.ParentCode = &parent
			acc.RootCode = parent
			acc.Level = 1
		}
		out = append(out, acc)
	}
	return out
}

type seedLine struct {
	code    string
	amount  decimal.Decimal
	isDebit bool
}

type seedVoucher struct {
	id    uuid.UUID
	date  time.Time
	memo  string
	lines []seedLine
}

func dr(code string, amount int64) seedLine {
	return seedLine{code: code, amount: decimal.NewFromInt(amount), isDebit: true}
}

func cr(code string, amount int64) seedLine {
	return seedLine{code: code, amount: decimal.NewFromInt(amount)}
}

// demoVouchers produces a repeating monthly pattern for the given years so
// that both the current and the prior period have data.
func demoVouchers(years ...int) []seedVoucher {
	var out []seedVoucher
	for _, year := range years {
		out = append(out, newVoucher(year, time.January, 2, "capital injection",
			dr("1002", 500000), cr("3001", 500000)))
		out = append(out, newVoucher(year, time.January, 5, "equipment purchase",
			dr("1601", 120000), cr("1002", 120000)))
		out = append(out, newVoucher(year, time.February, 1, "bank loan",
			dr("1002", 200000), cr("2501", 200000)))
		for month := time.January; month <= time.December; month++ {
			out = append(out,
				newVoucher(year, month, 10, "cash sales",
					dr("1001", 80000), cr("4001", 80000)),
				newVoucher(year, month, 12, "credit sales",
					dr("1122", 45000), cr("4001", 45000)),
				newVoucher(year, month, 18, "customer collections",
					dr("1002", 40000), cr("1122", 40000)),
				newVoucher(year, month, 20, "materials on account",
					dr("1403", 30000), cr("2202", 30000)),
				newVoucher(year, month, 21, "cost of sales",
					dr("5001", 28000), cr("1403", 28000)),
				newVoucher(year, month, 22, "supplier payment",
					dr("2202", 25000), cr("1002", 25000)),
				newVoucher(year, month, 25, "payroll accrual",
					dr("5601", 18000), dr("5602", 12000), cr("2211", 30000)),
				newVoucher(year, month, 28, "payroll payment",
					dr("2211", 30000), cr("1002", 30000)),
				newVoucher(year, month, 28, "loan interest",
					dr("5603", 1500), cr("1002", 1500)),
			)
			if month%3 == 0 {
				out = append(out,
					newVoucher(year, month, 15, "quarterly tax accrual",
						dr("5801", 9000), cr("2221", 9000)),
					newVoucher(year, month, 30, "quarterly tax payment",
						dr("2221", 9000), cr("1001", 9000)),
				)
			}
		}
	}
	return out
}

func newVoucher(year int, month time.Month, day int, memo string, lines ...seedLine) seedVoucher {
	date := time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	// Deterministic IDs keep reseeding idempotent.
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%s", date.Format(time.DateOnly), memo)))
	return seedVoucher{id: id, date: date, memo: memo, lines: lines}
}

// balanced reports whether debits equal credits.
func (v seedVoucher) balanced() bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range v.lines {
		if l.isDebit {
			debit = debit.Add(l.amount)
		} else {
			credit = credit.Add(l.amount)
		}
	}
	return debit.Equal(credit)
}
