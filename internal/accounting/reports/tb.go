package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

// Amounts carries the six trial balance figures of a node.
type Amounts struct {
	BeginningDebit  decimal.Decimal `json:"beginningDebit"`
	BeginningCredit decimal.Decimal `json:"beginningCredit"`
	MidtermDebit    decimal.Decimal `json:"midtermDebit"`
	MidtermCredit   decimal.Decimal `json:"midtermCredit"`
	EndingDebit     decimal.Decimal `json:"endingDebit"`
	EndingCredit    decimal.Decimal `json:"endingCredit"`
}

// add sums the beginning and midterm figures; ending is left to settle.
func (a Amounts) add(b Amounts) Amounts {
	return Amounts{
		BeginningDebit:  a.BeginningDebit.Add(b.BeginningDebit),
		BeginningCredit: a.BeginningCredit.Add(b.BeginningCredit),
		MidtermDebit:    a.MidtermDebit.Add(b.MidtermDebit),
		MidtermCredit:   a.MidtermCredit.Add(b.MidtermCredit),
	}
}

// settle derives ending = beginning + midterm.
func (a Amounts) settle() Amounts {
	a.EndingDebit = a.BeginningDebit.Add(a.MidtermDebit)
	a.EndingCredit = a.BeginningCredit.Add(a.MidtermCredit)
	return a
}

// Beginning returns the opening balance on the account's normal side.
func (a Amounts) Beginning(debitNormal bool) decimal.Decimal {
	return normalSide(a.BeginningDebit, a.BeginningCredit, debitNormal)
}

// Midterm returns the period movement on the account's normal side.
func (a Amounts) Midterm(debitNormal bool) decimal.Decimal {
	return normalSide(a.MidtermDebit, a.MidtermCredit, debitNormal)
}

// Ending returns the closing balance on the account's normal side.
func (a Amounts) Ending(debitNormal bool) decimal.Decimal {
	return normalSide(a.EndingDebit, a.EndingCredit, debitNormal)
}

func normalSide(debit, credit decimal.Decimal, debitNormal bool) decimal.Decimal {
	if debitNormal {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// AccountNode is an account annotated with its aggregated amounts.
type AccountNode struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Type          ledger.AccountType `json:"accountType"`
	IsDebitNormal bool               `json:"isDebitNormal"`
	Depth         int                `json:"depth"`
	Amounts
	Children []AccountNode `json:"children,omitempty"`
}

// Window describes the aggregation boundaries. Entries dated before
// HistoryStart are ignored (zero HistoryStart keeps all history), entries in
// [HistoryStart, Start) form the beginning balance, entries in [Start, End]
// form the midterm movement, and later entries are ignored.
type Window struct {
	HistoryStart time.Time
	Start        time.Time
	End          time.Time
}

// WindowFor builds a window for the period with the given history start.
func WindowFor(period ledger.Period, historyStart time.Time) Window {
	return Window{HistoryStart: historyStart, Start: period.Start, End: period.End}
}

type bucket int

const (
	bucketNone bucket = iota
	bucketBeginning
	bucketMidterm
)

func (w Window) bucket(t time.Time) bucket {
	switch {
	case t.After(w.End):
		return bucketNone
	case !t.Before(w.Start):
		return bucketMidterm
	case !w.HistoryStart.IsZero() && t.Before(w.HistoryStart):
		return bucketNone
	default:
		return bucketBeginning
	}
}

// Aggregate computes trial balance amounts for every node of the forest and
// returns annotated copies of the root trees. The forest is not modified, so
// the same forest can be aggregated for several windows. A node's own entries
// are counted first and its children's totals are added on top.
func Aggregate(f *forest.Forest, entries []ledger.LineEntry, w Window) []AccountNode {
	if f.Len() == 0 {
		return nil
	}
	direct := make([]Amounts, f.Len())
	for _, entry := range entries {
		if entry.Deleted {
			continue
		}
		idx, ok := f.Lookup(entry.AccountCode)
		if !ok {
			continue
		}
		amt := &direct[idx]
		switch w.bucket(entry.VoucherDate) {
		case bucketBeginning:
			if entry.IsDebit {
				amt.BeginningDebit = amt.BeginningDebit.Add(entry.Amount)
			} else {
				amt.BeginningCredit = amt.BeginningCredit.Add(entry.Amount)
			}
		case bucketMidterm:
			if entry.IsDebit {
				amt.MidtermDebit = amt.MidtermDebit.Add(entry.Amount)
			} else {
				amt.MidtermCredit = amt.MidtermCredit.Add(entry.Amount)
			}
		}
	}

	var build func(idx int) AccountNode
	build = func(idx int) AccountNode {
		src := f.Nodes[idx]
		node := AccountNode{
			Code:          src.Account.Code,
			Name:          src.Account.Name,
			Type:          src.Account.Type,
			IsDebitNormal: src.Account.IsDebitNormal,
			Depth:         src.Depth,
			Amounts:       direct[idx],
		}
		if len(src.Children) > 0 {
			node.Children = make([]AccountNode, 0, len(src.Children))
		}
		for _, childIdx := range src.Children {
			child := build(childIdx)
			node.Amounts = node.Amounts.add(child.Amounts)
			node.Children = append(node.Children, child)
		}
		node.Amounts = node.Amounts.settle()
		return node
	}

	roots := make([]AccountNode, 0, len(f.Roots))
	for _, idx := range f.Roots {
		roots = append(roots, build(idx))
	}
	return roots
}

// Flatten indexes every node of the trees by code. When a code repeats, the
// first node in forest order wins.
func Flatten(nodes []AccountNode) map[string]AccountNode {
	out := make(map[string]AccountNode)
	var visit func([]AccountNode)
	visit = func(list []AccountNode) {
		for _, n := range list {
			if _, ok := out[n.Code]; !ok {
				out[n.Code] = n
			}
			visit(n.Children)
		}
	}
	visit(nodes)
	return out
}

// Totals sums the amounts of the root nodes.
func Totals(nodes []AccountNode) Amounts {
	var total Amounts
	for _, n := range nodes {
		total = total.add(n.Amounts)
	}
	return total.settle()
}

// Balanced reports whether debits equal credits at every stage.
func (a Amounts) Balanced() bool {
	return a.BeginningDebit.Equal(a.BeginningCredit) &&
		a.MidtermDebit.Equal(a.MidtermCredit) &&
		a.EndingDebit.Equal(a.EndingCredit)
}
