package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.True(t, Percentage(dec(50), decimal.Zero).IsZero())
	assert.True(t, Percentage(dec(1), dec(3)).Equal(dec(33)))
	assert.True(t, Percentage(dec(2), dec(3)).Equal(dec(67)))
	assert.True(t, Percentage(dec(-1), dec(4)).Equal(dec(-25)))
	assert.True(t, Percentage(dec(1), dec(40)).Equal(dec(3)))
	assert.True(t, Percentage(dec(-1), dec(40)).Equal(dec(-3)))
}

func TestCombineZeroReference(t *testing.T) {
	current := []ReportLine{{Code: "1", CurrentAmount: dec(100)}}
	prior := []ReportLine{{Code: "1", CurrentAmount: dec(40)}}

	out := Combine(current, prior, &Reference{})
	require.Len(t, out, 1)
	assert.True(t, out[0].CurrentPercentage.IsZero())
	assert.True(t, out[0].PriorPercentage.IsZero())
	assert.True(t, out[0].PriorAmount.Equal(dec(40)))

	out = Combine(current, prior, nil)
	assert.True(t, out[0].CurrentPercentage.IsZero())
}

func TestCombineAlignsByCode(t *testing.T) {
	current := []ReportLine{
		{Code: "1", CurrentAmount: dec(200), Children: []ReportLine{
			{Code: "1001", CurrentAmount: dec(150)},
			{Code: "1122", CurrentAmount: dec(50)},
		}},
		{Code: "2", CurrentAmount: dec(80)},
	}
	prior := []ReportLine{
		{Code: "2", CurrentAmount: dec(60)},
		{Code: "1", CurrentAmount: dec(100), Children: []ReportLine{
			{Code: "1122", CurrentAmount: dec(100)},
		}},
		{Code: "7", CurrentAmount: dec(5)},
	}

	out := Combine(current, prior, &Reference{Current: dec(200), Prior: dec(100)})
	require.Len(t, out, 2)
	assert.True(t, out[0].PriorAmount.Equal(dec(100)))
	assert.True(t, out[0].CurrentPercentage.Equal(dec(100)))
	assert.True(t, out[1].PriorAmount.Equal(dec(60)))
	assert.True(t, out[1].PriorPercentage.Equal(dec(60)))

	require.Len(t, out[0].Children, 2)
	newAccount := out[0].Children[0]
	assert.Equal(t, "1001", newAccount.Code)
	assert.True(t, newAccount.PriorAmount.IsZero())
	assert.True(t, newAccount.PriorPercentage.IsZero())
	assert.True(t, newAccount.CurrentPercentage.Equal(dec(75)))
	assert.True(t, out[0].Children[1].PriorAmount.Equal(dec(100)))
}

func TestCombineDoesNotMutateInputs(t *testing.T) {
	current := []ReportLine{{Code: "1", CurrentAmount: dec(10), Children: []ReportLine{{Code: "11", CurrentAmount: dec(10)}}}}
	prior := []ReportLine{{Code: "1", CurrentAmount: dec(5)}}

	out := Combine(current, prior, &Reference{Current: dec(10), Prior: dec(5)})
	out[0].Children[0].Name = "changed"

	assert.True(t, current[0].PriorAmount.IsZero())
	assert.Empty(t, current[0].Children[0].Name)
	assert.True(t, prior[0].PriorAmount.IsZero())
	assert.Nil(t, Combine(nil, prior, nil))
}
