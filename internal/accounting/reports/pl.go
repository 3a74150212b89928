package reports

// Income statement totals keys.
const (
	TotalRevenue = "revenue"
	TotalExpense = "expense"
)

type incomeStatement struct {
	base
}

// OtherInfo reports revenue, expense and net income for both periods and the
// current net margin as a whole percentage of revenue.
func (p incomeStatement) OtherInfo(current, prior Statement) OtherInfo {
	info := newOtherInfo()
	revenue := p.total(current, TotalRevenue)
	expense := p.total(current, TotalExpense)
	net := revenue.Sub(expense)
	priorRevenue := p.total(prior, TotalRevenue)
	priorExpense := p.total(prior, TotalExpense)
	priorNet := priorRevenue.Sub(priorExpense)

	info.Figures["revenue"] = revenue
	info.Figures["expense"] = expense
	info.Figures["netIncome"] = net
	info.Figures["netMargin"] = Percentage(net, revenue)
	info.Figures["priorRevenue"] = priorRevenue
	info.Figures["priorExpense"] = priorExpense
	info.Figures["priorNetIncome"] = priorNet
	info.Figures["priorNetMargin"] = Percentage(priorNet, priorRevenue)
	info.Flags["profitable"] = net.IsPositive()
	return info
}
