package reports

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/forest"
	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/pattern"
)

// SectionDef is one cash-flow section. Leaf sections carry the rule that
// admits a voucher; a leaf without a rule admits every voucher that reaches
// it.
type SectionDef struct {
	Code   string          `json:"code" validate:"required"`
	Name   string          `json:"name" validate:"required"`
	Parent string          `json:"parent,omitempty"`
	Match  *pattern.Either `json:"match,omitempty" validate:"-"`
}

type cashFlow struct {
	base
	sections *forest.Forest
	leaves   []SectionDef
	cash     pattern.Pattern
}

func newCashFlow(logger *slog.Logger, def StatementDef, fiscalStart time.Month) cashFlow {
	accounts := make([]ledger.Account, 0, len(def.Sections))
	for _, s := range def.Sections {
		acc := ledger.Account{
			Code:          s.Code,
			Name:          s.Name,
			IsDebitNormal: true,
			Type:          ledger.AccountTypeAsset,
			Active:        true,
		}
		if s.Parent != "" {
			parent := s.Parent
			acc.ParentCode = &parent
		}
		accounts = append(accounts, acc)
	}
	sections := forest.Build(logger, accounts)

	var leaves []SectionDef
	for _, s := range def.Sections {
		idx, ok := sections.Lookup(s.Code)
		if ok && sections.Nodes[idx].IsLeaf() {
			leaves = append(leaves, s)
		}
	}
	return cashFlow{
		base:     newBase(def, fiscalStart),
		sections: sections,
		leaves:   leaves,
		cash:     *def.CashAccounts,
	}
}

// Layout ignores the chart of accounts; cash flow aggregates into its
// section tree.
func (c cashFlow) Layout(*forest.Forest) *forest.Forest { return c.sections }

type voucher struct {
	legs   []ledger.LineEntry
	debit  pattern.CodeSet
	credit pattern.CodeSet
}

// Classify groups entries by voucher and assigns each voucher to the first
// leaf section whose rule matches its debit and credit code sets. The cash
// legs of an assigned voucher are re-keyed to the section code, so a cash
// debit is an inflow and a cash credit an outflow. Vouchers without a cash
// leg or without a matching section are dropped.
func (c cashFlow) Classify(entries []ledger.LineEntry) []ledger.LineEntry {
	vouchers := make(map[string]*voucher)
	var order []string
	for _, e := range entries {
		if e.Deleted {
			continue
		}
		v, ok := vouchers[e.VoucherID]
		if !ok {
			v = &voucher{debit: pattern.NewCodeSet(), credit: pattern.NewCodeSet()}
			vouchers[e.VoucherID] = v
			order = append(order, e.VoucherID)
		}
		v.legs = append(v.legs, e)
		if e.IsDebit {
			v.debit.Add(e.AccountCode)
		} else {
			v.credit.Add(e.AccountCode)
		}
	}

	var out []ledger.LineEntry
	for _, id := range order {
		v := vouchers[id]
		section, ok := c.section(v)
		if !ok {
			continue
		}
		for _, leg := range v.legs {
			if !pattern.Matches(c.cash, pattern.NewCodeSet(leg.AccountCode)) {
				continue
			}
			leg.AccountCode = section
			out = append(out, leg)
		}
	}
	return out
}

func (c cashFlow) section(v *voucher) (string, bool) {
	all := pattern.NewCodeSet()
	for code := range v.debit {
		all.Add(code)
	}
	for code := range v.credit {
		all.Add(code)
	}
	if !pattern.Matches(c.cash, all) {
		return "", false
	}
	for _, s := range c.leaves {
		if pattern.MatchesEither(s.Match, v.debit, v.credit) {
			return s.Code, true
		}
	}
	return "", false
}

// OtherInfo reports the net flow of every top-level section and the net
// change in cash for both periods.
func (c cashFlow) OtherInfo(current, prior Statement) OtherInfo {
	info := newOtherInfo()
	net, priorNet := decimal.Zero, decimal.Zero
	for _, idx := range c.sections.Roots {
		code := c.sections.Nodes[idx].Code()
		cur := sectionFlow(current, code)
		pri := sectionFlow(prior, code)
		info.Figures[code] = cur
		info.Figures["prior"+code] = pri
		net = net.Add(cur)
		priorNet = priorNet.Add(pri)
	}
	info.Figures["netChange"] = net
	info.Figures["priorNetChange"] = priorNet
	info.Flags["netInflow"] = net.IsPositive()
	return info
}

func sectionFlow(s Statement, code string) decimal.Decimal {
	node, ok := s.Amounts[code]
	if !ok {
		return decimal.Zero
	}
	return MidtermMovement(node)
}
