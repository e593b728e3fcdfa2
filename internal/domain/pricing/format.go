package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Comma renders an ISK amount with thousands separators, dropping any
// fractional part: 1234567.89 -> "1,234,568".
func Comma(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	negative := whole < 0
	if negative {
		whole = -whole
	}

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// Shorten renders an ISK amount in compact form with the given number of
// decimal places: 1,250,000,000 -> "1.25B".
func Shorten(amount decimal.Decimal, places int32) string {
	abs := amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000_000)):
		return amount.Div(decimal.NewFromInt(1_000_000_000_000)).StringFixed(places) + "T"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000)):
		return amount.Div(decimal.NewFromInt(1_000_000_000)).StringFixed(places) + "B"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return amount.Div(million).StringFixed(places) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		return amount.Div(decimal.NewFromInt(1_000)).StringFixed(places) + "K"
	default:
		return amount.StringFixed(places)
	}
}
