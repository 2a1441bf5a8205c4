package chart

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// RoundCents rounds v half away from zero to two decimals
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatCurrency formats v as dollars with grouping, e.g. $1,234.56 or -$5.00
func FormatCurrency(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2)
	if rounded.IsNegative() {
		return "-$" + printer.Sprintf("%.2f", rounded.Neg().InexactFloat64())
	}
	return "$" + printer.Sprintf("%.2f", rounded.InexactFloat64())
}
