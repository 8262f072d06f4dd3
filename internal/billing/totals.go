package billing

import "github.com/shopspring/decimal"

// TaxRate is the HST charged on subtotal plus commission.
var TaxRate = decimal.RequireFromString("0.13")

type Totals struct {
	SubTotal   decimal.Decimal
	Percent    decimal.Decimal
	Commission decimal.Decimal
	HST        decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTotals aggregates line amounts into invoice totals. Commission and
// HST are rounded to cents and the total is their exact sum with the subtotal.
func ComputeTotals(amounts []decimal.Decimal, percent decimal.Decimal) Totals {
	subTotal := decimal.Sum(decimal.Zero, amounts...).Round(2)
	commission := subTotal.Mul(percent).Div(hundred).Round(2)
	hst := subTotal.Add(commission).Mul(TaxRate).Round(2)
	return Totals{
		SubTotal:   subTotal,
		Percent:    percent,
		Commission: commission,
		HST:        hst,
		Total:      subTotal.Add(commission).Add(hst),
	}
}
