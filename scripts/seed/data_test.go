package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
	_ "github.com/ledgerbook/ledgerbook/testing"
)

func toEntries(vouchers []seedVoucher) []ledger.LineEntry {
	var out []ledger.LineEntry
	for _, v := range vouchers {
		for _, l := range v.lines {
			out = append(out, ledger.LineEntry{
				AccountCode: l.code,
				Amount:      l.amount,
				IsDebit:     l.isDebit,
				VoucherID:   v.id.String(),
				VoucherDate: v.date,
			})
		}
	}
	return out
}

func TestDemoChartBuildsCleanForest(t *testing.T) {
	f := forest.Build(nil, ledgerAccounts())
	assert.Empty(t, f.Warnings)
	assert.Equal(t, len(demoChart), f.Len())
}

func TestDemoVouchersBalanceAndAreUnique(t *testing.T) {
	vouchers := demoVouchers(2023, 2024)
	require.NotEmpty(t, vouchers)
	seen := map[string]bool{}
	for _, v := range vouchers {
		assert.Truef(t, v.balanced(), "%s on %s", v.memo, v.date)
		assert.Falsef(t, seen[v.id.String()], "duplicate id for %s on %s", v.memo, v.date)
		seen[v.id.String()] = true
	}
	assert.Equal(t, demoVouchers(2024)[0].id, demoVouchers(2024)[0].id)
}

func TestDemoCashFlowClassifiesEveryCashVoucher(t *testing.T) {
	cfg, err := reports.DefaultConfig(nil)
	require.NoError(t, err)
	variant, err := cfg.Variant(reports.CashFlow)
	require.NoError(t, err)

	entries := toEntries(demoVouchers(2024))
	period := ledger.Period{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
	stmt := reports.BuildStatement(variant, forest.Build(nil, ledgerAccounts()), entries, period)
	info := variant.OtherInfo(stmt, stmt)

	cashDelta := decimal.Zero
	for _, e := range entries {
		if e.AccountCode != "1001" && e.AccountCode != "1002" {
			continue
		}
		if e.IsDebit {
			cashDelta = cashDelta.Add(e.Amount)
		} else {
			cashDelta = cashDelta.Sub(e.Amount)
		}
	}
	assert.True(t, cashDelta.Equal(info.Figures["netChange"]), "cash delta %s net change %s", cashDelta, info.Figures["netChange"])
}
