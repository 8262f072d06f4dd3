package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nurpe/haulops-billing/internal/model"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "", FormatAmount(decimal.Zero))
	assert.Equal(t, "60.00", FormatAmount(dec("60")))
	assert.Equal(t, "1234.57", FormatAmount(dec("1234.567")))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "$621.50", FormatCurrency(dec("621.5")))
	assert.Equal(t, "$1,234,567.08", FormatCurrency(dec("1234567.075")))
	assert.Equal(t, "-$12.30", FormatCurrency(dec("-12.3")))
	assert.Equal(t, "", FormatRate(decimal.Zero))
	assert.Equal(t, "$85.00", FormatRate(dec("85")))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "10%", FormatPercent(dec("10.000")))
	assert.Equal(t, "12.5%", FormatPercent(dec("12.5")))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1.25", FormatQuantity(model.DispatchHourly, dec("1.25"), nil, 0))
	assert.Equal(t, "15.50", FormatQuantity(model.DispatchTonnage, decimal.Zero, []decimal.Decimal{dec("10"), dec("5.5")}, 0))
	assert.Equal(t, "3", FormatQuantity(model.DispatchLoad, decimal.Zero, nil, 3))
	assert.Equal(t, "1", FormatQuantity(model.DispatchFixed, decimal.Zero, nil, 0))
	assert.Equal(t, "", FormatQuantity("Other", decimal.Zero, nil, 0))
}
