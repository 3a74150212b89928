package reports

// Balance sheet totals keys.
const (
	TotalAssets      = "assets"
	TotalLiabilities = "liabilities"
	TotalEquity      = "equity"
)

type balanceSheet struct {
	base
}

// OtherInfo reports the headline totals, whether assets equal liabilities
// plus equity, and the debt and equity ratios as whole percentages of assets.
func (b balanceSheet) OtherInfo(current, prior Statement) OtherInfo {
	info := newOtherInfo()
	assets := b.total(current, TotalAssets)
	liabilities := b.total(current, TotalLiabilities)
	equity := b.total(current, TotalEquity)

	info.Figures["totalAssets"] = assets
	info.Figures["totalLiabilities"] = liabilities
	info.Figures["totalEquity"] = equity
	info.Figures["debtRatio"] = Percentage(liabilities, assets)
	info.Figures["equityRatio"] = Percentage(equity, assets)
	info.Figures["priorTotalAssets"] = b.total(prior, TotalAssets)
	info.Figures["priorTotalLiabilities"] = b.total(prior, TotalLiabilities)
	info.Figures["priorTotalEquity"] = b.total(prior, TotalEquity)
	info.Flags["balanced"] = assets.Equal(liabilities.Add(equity))
	return info
}

