package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_ThreeJobs(t *testing.T) {
	totals := ComputeTotals([]decimal.Decimal{dec("100"), dec("150"), dec("250")}, dec("10"))

	assert.Equal(t, "500.00", totals.SubTotal.StringFixed(2))
	assert.Equal(t, "50.00", totals.Commission.StringFixed(2))
	assert.Equal(t, "71.50", totals.HST.StringFixed(2))
	assert.Equal(t, "621.50", totals.Total.StringFixed(2))
}

func TestComputeTotals_TotalIsSumOfParts(t *testing.T) {
	amounts := [][]decimal.Decimal{
		{dec("0.01")},
		{dec("133.33"), dec("66.67"), dec("12.49")},
		{dec("999999.99"), dec("0.5")},
		{},
	}
	percents := []decimal.Decimal{dec("0"), dec("7.5"), dec("10"), dec("12.345"), dec("33.3")}

	for _, set := range amounts {
		for _, pct := range percents {
			totals := ComputeTotals(set, pct)
			remainder := totals.Total.Sub(totals.SubTotal).Sub(totals.Commission).Sub(totals.HST)
			assert.True(t, remainder.IsZero(), "amounts=%v pct=%s", set, pct)
		}
	}
}

func TestComputeTotals_ZeroPercent(t *testing.T) {
	totals := ComputeTotals([]decimal.Decimal{dec("200")}, decimal.Zero)
	assert.True(t, totals.Commission.IsZero())
	assert.Equal(t, "26.00", totals.HST.StringFixed(2))
	assert.Equal(t, "226.00", totals.Total.StringFixed(2))
}
