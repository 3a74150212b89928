package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

func cashFlowEntries() []ledger.LineEntry {
	deleted := entry("v8", "1001", 9000, true, day(2024, time.June, 1))
	deleted.Deleted = true
	return []ledger.LineEntry{
		entry("v1", "1001", 500, true, day(2024, time.February, 1)),
		entry("v1", "4001", 500, false, day(2024, time.February, 1)),
		entry("v2", "5602", 40, true, day(2024, time.March, 1)),
		entry("v2", "1002", 40, false, day(2024, time.March, 1)),
		entry("v3", "1601", 300, true, day(2024, time.April, 1)),
		entry("v3", "1002", 300, false, day(2024, time.April, 1)),
		entry("v4", "1002", 100, true, day(2024, time.May, 1)),
		entry("v4", "1001", 100, false, day(2024, time.May, 1)),
		entry("v5", "1122", 200, true, day(2024, time.May, 2)),
		entry("v5", "4001", 200, false, day(2024, time.May, 2)),
		entry("v6", "1001", 1000, true, day(2024, time.June, 1)),
		entry("v6", "2501", 1000, false, day(2024, time.June, 1)),
		entry("v7", "1001", 70, true, day(2023, time.July, 1)),
		entry("v7", "4001", 70, false, day(2023, time.July, 1)),
		deleted,
	}
}

func TestCashFlowClassifiesVouchersBySection(t *testing.T) {
	cfg, err := DefaultConfig(nil)
	require.NoError(t, err)
	v, err := cfg.Variant(CashFlow)
	require.NoError(t, err)

	classified := v.Classify(cashFlowEntries())
	byVoucher := map[string]string{}
	for _, e := range classified {
		byVoucher[e.VoucherID] = e.AccountCode
	}
	assert.Equal(t, map[string]string{
		"v1": "CF101",
		"v2": "CF105",
		"v3": "CF201",
		"v6": "CF301",
		"v7": "CF101",
	}, byVoucher)
	assert.Len(t, classified, 5)
}

func TestCashFlowStatement(t *testing.T) {
	cfg, err := DefaultConfig(nil)
	require.NoError(t, err)
	v, err := cfg.Variant(CashFlow)
	require.NoError(t, err)

	entries := cashFlowEntries()
	current := BuildStatement(v, nil, entries, period2024())
	prior := BuildStatement(v, nil, entries, period2024().Prior())
	report := Compose(v, Book{ID: "book-1"}, current, prior)

	general := map[string]ReportLine{}
	for _, l := range report.GeneralLines {
		general[l.Code] = l
	}
	require.Len(t, report.GeneralLines, 13)
	assert.True(t, general["CF1"].CurrentAmount.Equal(dec(460)))
	assert.True(t, general["CF101"].CurrentAmount.Equal(dec(500)))
	assert.True(t, general["CF101"].PriorAmount.Equal(dec(70)))
	assert.True(t, general["CF105"].CurrentAmount.Equal(dec(-40)))
	assert.True(t, general["CF2"].CurrentAmount.Equal(dec(-300)))
	assert.True(t, general["CF3"].CurrentAmount.Equal(dec(1000)))
	assert.True(t, general["CF102"].CurrentAmount.IsZero())
	assert.True(t, general["CF1"].CurrentPercentage.IsZero())

	assert.True(t, report.OtherInfo.Figures["netChange"].Equal(dec(1160)))
	assert.True(t, report.OtherInfo.Figures["priorNetChange"].Equal(dec(70)))
	assert.True(t, report.OtherInfo.Flags["netInflow"])

	require.Len(t, report.DetailLines, 3)
	assert.Len(t, report.DetailLines[0].Children, 5)
}
