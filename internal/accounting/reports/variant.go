package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

// ReportType identifies a financial statement.
type ReportType string

const (
	BalanceSheet    ReportType = "balance_sheet"
	IncomeStatement ReportType = "income_statement"
	CashFlow        ReportType = "cash_flow"
)

// ReportTypes lists the supported statements in presentation order.
var ReportTypes = []ReportType{BalanceSheet, IncomeStatement, CashFlow}

// ErrUnknownReportType indicates a report type with no configuration.
var ErrUnknownReportType = errors.New("reports: unknown report type")

// ParseReportType validates a report type string.
func ParseReportType(raw string) (ReportType, error) {
	for _, t := range ReportTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportType, raw)
}

// HistoryPolicy decides where beginning balances start accumulating.
type HistoryPolicy string

const (
	// AllHistory counts every entry before the period as opening balance.
	AllHistory HistoryPolicy = "all_history"
	// FiscalYear restarts opening balances at the fiscal year containing the
	// period start.
	FiscalYear HistoryPolicy = "fiscal_year"
)

// FiscalYearStart returns the first day of the fiscal year containing t.
func FiscalYearStart(t time.Time, startMonth time.Month) time.Time {
	year := t.Year()
	if t.Month() < startMonth {
		year--
	}
	return time.Date(year, startMonth, 1, 0, 0, 0, 0, t.Location())
}

// Variant captures what differs between statements: which accounts they read,
// how entries are classified, which figure is presented and the auxiliary
// payload.
type Variant interface {
	Type() ReportType
	AccountTypes() []ledger.AccountType
	HistoryStart(period ledger.Period) time.Time
	// Layout returns the forest the statement aggregates into.
	Layout(accounts *forest.Forest) *forest.Forest
	// Classify selects and re-keys the entries that feed the layout.
	Classify(entries []ledger.LineEntry) []ledger.LineEntry
	Measure() Measure
	Template() []TemplateLine
	// DetailTemplate is nil when the detail view is the full layout forest.
	DetailTemplate() []TemplateLine
	ReferenceCode() string
	OtherInfo(current, prior Statement) OtherInfo
}

// OtherInfo is the statement-specific auxiliary payload.
type OtherInfo struct {
	Figures map[string]decimal.Decimal `json:"figures,omitempty"`
	Flags   map[string]bool            `json:"flags,omitempty"`
}

func newOtherInfo() OtherInfo {
	return OtherInfo{Figures: map[string]decimal.Decimal{}, Flags: map[string]bool{}}
}

// base carries the configuration shared by every variant.
type base struct {
	def         StatementDef
	fiscalStart time.Month
	measure     Measure
}

func newBase(def StatementDef, fiscalStart time.Month) base {
	return base{def: def, fiscalStart: fiscalStart, measure: measureByName(def.Measure)}
}

func (b base) Type() ReportType { return b.def.Type }

func (b base) AccountTypes() []ledger.AccountType {
	return append([]ledger.AccountType(nil), b.def.AccountTypes...)
}

func (b base) HistoryStart(period ledger.Period) time.Time {
	if b.def.History == FiscalYear {
		return FiscalYearStart(period.Start, b.fiscalStart)
	}
	return time.Time{}
}

func (b base) Layout(accounts *forest.Forest) *forest.Forest { return accounts }

func (b base) Classify(entries []ledger.LineEntry) []ledger.LineEntry { return entries }

func (b base) Measure() Measure { return b.measure }

func (b base) Template() []TemplateLine { return b.def.General }

func (b base) DetailTemplate() []TemplateLine { return b.def.Detail }

func (b base) ReferenceCode() string { return b.def.ReferenceCode }

// total returns the measured figure of the account the totals entry points
// at, or zero when the key or account is absent.
func (b base) total(s Statement, key string) decimal.Decimal {
	code, ok := b.def.Totals[key]
	if !ok {
		return decimal.Zero
	}
	node, ok := s.Amounts[code]
	if !ok {
		return decimal.Zero
	}
	return b.measure(node)
}

func measureByName(name string) Measure {
	switch name {
	case "beginning":
		return BeginningBalance
	case "midterm":
		return MidtermMovement
	default:
		return EndingBalance
	}
}

// Statement is one period computed for a variant.
type Statement struct {
	Period  ledger.Period
	Window  Window
	Nodes   []AccountNode
	Amounts map[string]AccountNode
	General []ReportLine
	Detail  []ReportLine
}

// BuildStatement aggregates entries into the variant's layout and projects
// the general and detail views for one period.
func BuildStatement(v Variant, accounts *forest.Forest, entries []ledger.LineEntry, period ledger.Period) Statement {
	layout := v.Layout(accounts)
	window := WindowFor(period, v.HistoryStart(period))
	nodes := Aggregate(layout, v.Classify(entries), window)
	amounts := Flatten(nodes)
	measure := v.Measure()

	st := Statement{
		Period:  period,
		Window:  window,
		Nodes:   nodes,
		Amounts: amounts,
		General: Project(amounts, v.Template(), measure),
	}
	if detail := v.DetailTemplate(); len(detail) > 0 {
		st.Detail = Project(amounts, detail, measure)
	} else {
		st.Detail = Detail(nodes, measure)
	}
	return st
}

// Book identifies the ledger a report was produced for.
type Book struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// FinancialReport is a statement for the current period with the prior
// period alongside.
type FinancialReport struct {
	ID            uuid.UUID     `json:"id"`
	Book          Book          `json:"book"`
	Type          ReportType    `json:"reportType"`
	CurrentPeriod ledger.Period `json:"currentPeriod"`
	PriorPeriod   ledger.Period `json:"priorPeriod"`
	DetailLines   []ReportLine  `json:"detailLines"`
	GeneralLines  []ReportLine  `json:"generalLines"`
	OtherInfo     OtherInfo     `json:"otherInfo"`
	Warnings      []string      `json:"warnings,omitempty"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// Compose combines two computed statements into the final report. The
// reference total is the amount of the variant's reference line in each
// period's general view.
func Compose(v Variant, book Book, current, prior Statement) FinancialReport {
	var ref *Reference
	if code := v.ReferenceCode(); code != "" {
		ref = &Reference{
			Current: lineAmount(current.General, code),
			Prior:   lineAmount(prior.General, code),
		}
	}
	return FinancialReport{
		Book:          book,
		Type:          v.Type(),
		CurrentPeriod: current.Period,
		PriorPeriod:   prior.Period,
		DetailLines:   Combine(current.Detail, prior.Detail, ref),
		GeneralLines:  Combine(current.General, prior.General, ref),
		OtherInfo:     v.OtherInfo(current, prior),
	}
}

func lineAmount(lines []ReportLine, code string) decimal.Decimal {
	for _, l := range lines {
		if l.Code == code {
			return l.CurrentAmount
		}
	}
	return decimal.Zero
}
