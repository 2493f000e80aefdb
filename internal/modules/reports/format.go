package reports

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency all report amounts are shown in
const Currency = money.USD

// FormatMoney renders an amount like $1,250.00. Non-finite values render as "n/a".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	cur := *money.New(0, Currency).Currency()
	minor := decimal.NewFromFloat(v).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent renders a value that is already in percent with two decimals.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatRatio renders a dimensionless ratio with two decimals
func FormatRatio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatQuantity drops trailing zeros and keeps at most four decimals.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).Round(4).String()
}
