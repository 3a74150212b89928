package reports

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Reference holds the denominators used for percentage-of-total figures.
type Reference struct {
	Current decimal.Decimal `json:"current"`
	Prior   decimal.Decimal `json:"prior"`
}

// Percentage returns amount/total*100 rounded to a whole number, or zero
// when total is zero. Halves round away from zero, so -2.5 becomes -3.
func Percentage(amount, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(hundred).Div(total).Round(0)
}

// Combine merges independently computed current and prior lines. Lines are
// matched by code within the same child scope; a current line without a
// prior counterpart gets zero prior figures. The shape of the result follows
// the current lines. A nil ref yields zero percentages. Inputs are not
// modified.
func Combine(current, prior []ReportLine, ref *Reference) []ReportLine {
	if current == nil {
		return nil
	}
	var total Reference
	if ref != nil {
		total = *ref
	}
	return combineScope(current, prior, total)
}

func combineScope(current, prior []ReportLine, ref Reference) []ReportLine {
	priorByCode := make(map[string]ReportLine, len(prior))
	for _, p := range prior {
		if _, ok := priorByCode[p.Code]; !ok {
			priorByCode[p.Code] = p
		}
	}

	out := make([]ReportLine, 0, len(current))
	for _, cur := range current {
		line := ReportLine{
			Code:              cur.Code,
			Name:              cur.Name,
			Indent:            cur.Indent,
			CurrentAmount:     cur.CurrentAmount,
			CurrentPercentage: Percentage(cur.CurrentAmount, ref.Current),
			PriorAmount:       decimal.Zero,
			PriorPercentage:   decimal.Zero,
		}
		var priorChildren []ReportLine
		if p, ok := priorByCode[cur.Code]; ok {
			line.PriorAmount = p.CurrentAmount
			line.PriorPercentage = Percentage(p.CurrentAmount, ref.Prior)
			priorChildren = p.Children
		}
		if len(cur.Children) > 0 {
			line.Children = combineScope(cur.Children, priorChildren, ref)
		}
		out = append(out, line)
	}
	return out
}
