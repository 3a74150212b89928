package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

func account(code, parent string, typ ledger.AccountType) ledger.Account {
	acc := ledger.Account{
		Code:          code,
		Name:          "Account " + code,
		IsDebitNormal: typ == ledger.AccountTypeAsset || typ == ledger.AccountTypeExpense || typ == ledger.AccountTypeCost,
		Type:          typ,
		Active:        true,
	}
	if parent != "" {
		p := parent
		acc.ParentCode = &p
	}
	return acc
}

func entry(voucher, code string, amount int64, debit bool, date time.Time) ledger.LineEntry {
	return ledger.LineEntry{
		AccountCode: code,
		Amount:      decimal.NewFromInt(amount),
		IsDebit:     debit,
		VoucherID:   voucher,
		VoucherDate: date,
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func period2024() ledger.Period {
	return ledger.Period{Start: day(2024, time.January, 1), End: day(2024, time.December, 31)}
}

func chart() *forest.Forest {
	return forest.Build(nil, []ledger.Account{
		account("1", "", ledger.AccountTypeAsset),
		account("1001", "1", ledger.AccountTypeAsset),
		account("1002", "1", ledger.AccountTypeAsset),
		account("1122", "1", ledger.AccountTypeAsset),
		account("1601", "1", ledger.AccountTypeAsset),
		account("2", "", ledger.AccountTypeLiability),
		account("2202", "2", ledger.AccountTypeLiability),
		account("2501", "2", ledger.AccountTypeLiability),
		account("3", "", ledger.AccountTypeEquity),
		account("3001", "3", ledger.AccountTypeEquity),
		account("4", "", ledger.AccountTypeRevenue),
		account("4001", "4", ledger.AccountTypeRevenue),
		account("5", "", ledger.AccountTypeExpense),
		account("5001", "5", ledger.AccountTypeCost),
		account("5602", "5", ledger.AccountTypeExpense),
	})
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
