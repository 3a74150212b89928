package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
)

// TemplateLine is one row of a statement layout.
type TemplateLine struct {
	Code        string             `json:"code" validate:"required"`
	Name        string             `json:"name" validate:"required"`
	Indent      int                `json:"indent" validate:"gte=0,lte=8"`
	AccountType ledger.AccountType `json:"accountType,omitempty"`
}

// ReportLine is a presentation row carrying current and prior figures.
type ReportLine struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Indent            int             `json:"indent"`
	CurrentAmount     decimal.Decimal `json:"currentAmount"`
	CurrentPercentage decimal.Decimal `json:"currentPercentage"`
	PriorAmount       decimal.Decimal `json:"priorAmount"`
	PriorPercentage   decimal.Decimal `json:"priorPercentage"`
	Children          []ReportLine    `json:"children,omitempty"`
}

// Measure picks the figure a statement presents for a node.
type Measure func(AccountNode) decimal.Decimal

// EndingBalance presents the closing balance on the normal side.
func EndingBalance(n AccountNode) decimal.Decimal { return n.Ending(n.IsDebitNormal) }

// MidtermMovement presents the period movement on the normal side.
func MidtermMovement(n AccountNode) decimal.Decimal { return n.Midterm(n.IsDebitNormal) }

// BeginningBalance presents the opening balance on the normal side.
func BeginningBalance(n AccountNode) decimal.Decimal { return n.Beginning(n.IsDebitNormal) }

// Project lays computed amounts onto a template, one line per template entry
// in template order. Codes without computed amounts produce zero lines, so
// the output always has len(template) lines. The template name labels the
// line; the account name is used only when the template leaves it blank.
func Project(amounts map[string]AccountNode, template []TemplateLine, measure Measure) []ReportLine {
	lines := make([]ReportLine, 0, len(template))
	for _, tl := range template {
		line := ReportLine{Code: tl.Code, Name: tl.Name, Indent: tl.Indent}
		if node, ok := amounts[tl.Code]; ok {
			line.CurrentAmount = measure(node)
			if line.Name == "" {
				line.Name = node.Name
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// Detail renders the computed trees as nested lines in forest order with the
// indent equal to the node depth.
func Detail(nodes []AccountNode, measure Measure) []ReportLine {
	if len(nodes) == 0 {
		return nil
	}
	lines := make([]ReportLine, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, ReportLine{
			Code:          n.Code,
			Name:          n.Name,
			Indent:        n.Depth,
			CurrentAmount: measure(n),
			Children:      Detail(n.Children, measure),
		})
	}
	return lines
}

// CountLines returns the number of lines including nested children.
func CountLines(lines []ReportLine) int {
	total := 0
	for _, l := range lines {
		total += 1 + CountLines(l.Children)
	}
	return total
}
