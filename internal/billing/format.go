package billing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nurpe/haulops-billing/internal/model"
)

var printer = message.NewPrinter(language.English)

// FormatAmount is the table form: two decimals, blank for zero.
func FormatAmount(value decimal.Decimal) string {
	if value.IsZero() {
		return ""
	}
	return value.StringFixed(2)
}

// FormatCurrency renders $1,234.50. Zero renders as $0.00.
func FormatCurrency(value decimal.Decimal) string {
	rounded := value.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()
	return sign + "$" + printer.Sprintf("%d", whole.IntPart()) + "." + twoDigits(cents)
}

// FormatRate is FormatCurrency with a blank for zero.
func FormatRate(value decimal.Decimal) string {
	if value.IsZero() {
		return ""
	}
	return FormatCurrency(value)
}

// FormatPercent drops trailing zeros: 10, 12.5.
func FormatPercent(value decimal.Decimal) string {
	return value.String() + "%"
}

// FormatQuantity is the quantity column of an invoice row.
func FormatQuantity(dispatch model.DispatchType, hours decimal.Decimal, weights []decimal.Decimal, loads int) string {
	switch dispatch {
	case model.DispatchHourly:
		return hours.StringFixed(2)
	case model.DispatchTonnage:
		return SumNumbers(weights).StringFixed(2)
	case model.DispatchLoad:
		return strconv.Itoa(loads)
	case model.DispatchFixed:
		return "1"
	default:
		return ""
	}
}

func twoDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	return strings.Repeat("0", 2-len(s)) + s
}
