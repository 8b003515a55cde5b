package output

import (
	"github.com/shopspring/decimal"
)

// StatisticPlaces is the number of places shown for Q statistics.
const StatisticPlaces = 6

// criticalPlaces is the minimum number of places shown for a critical value.
const criticalPlaces = 3

// FormatValue renders a sample value with the digits it carries, so 52.0 stays 52.0.
func FormatValue(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// FormatValues applies FormatValue to each element. A nil input yields an empty slice.
func FormatValues(values []decimal.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v)
	}
	return out
}

// FormatCritical renders a critical value with at least three decimal places.
func FormatCritical(d decimal.Decimal) string {
	if -d.Exponent() > criticalPlaces {
		return d.String()
	}
	return d.StringFixed(criticalPlaces)
}

// FormatStatistic truncates a statistic to StatisticPlaces and removes trailing zeros.
// Truncation keeps a statistic just under a critical value from displaying as equal to it.
func FormatStatistic(d decimal.Decimal) string {
	return d.Truncate(StatisticPlaces).String()
}

// FormatRounded rounds half-to-even and always shows places digits.
func FormatRounded(d decimal.Decimal, places int32) string {
	return d.StringFixedBank(places)
}
