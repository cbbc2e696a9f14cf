package output

import (
	"fmt"
	"math"

	money "github.com/firecalc/fire-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD currency rounded to cents.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + money.NewMoneyFromDecimal(amount).Round().StringFixed(2)
}

// FormatPercentage formats a fractional rate (0.04) as a percentage ("4.00%").
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatYears renders a year count, mapping the +Inf sentinel to "never".
func FormatYears(years float64) string {
	if math.IsInf(years, 1) || math.IsNaN(years) {
		return "never"
	}
	return fmt.Sprintf("%.1f years", years)
}
