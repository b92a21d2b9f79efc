package valuation

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Denominations of the Korean numbering system used for display.
const (
	man = 10_000      // 만
	eok = 100_000_000 // 억
)

var krPrinter = message.NewPrinter(language.Korean)

// FormatKRW renders an amount of whole won for display. Precision tiers:
// one thousand 억 and up shows integer 억, one hundred 억 and up one decimal,
// one 억 and up two decimals, below that the 만 denomination with grouped
// digits, and sub-만 amounts raw won. Total for every non-negative input;
// only exactly zero collapses to the zero label. The numeric value, not the
// string, is the unit of record.
func FormatKRW(amount int64) string {
	if amount <= 0 {
		return "0원"
	}

	switch {
	case amount >= 1_000*eok:
		return krPrinter.Sprintf("%d억원", int64(math.Round(float64(amount)/eok)))
	case amount >= 100*eok:
		return krPrinter.Sprintf("%.1f억원", float64(amount)/eok)
	case amount >= eok:
		return krPrinter.Sprintf("%.2f억원", float64(amount)/eok)
	case amount >= man:
		return krPrinter.Sprintf("%d만원", int64(math.Round(float64(amount)/man)))
	default:
		return krPrinter.Sprintf("%d원", amount)
	}
}

// FormatRange renders a value range as "min ~ max".
func FormatRange(r Range) string {
	return FormatKRW(r.Min) + " ~ " + FormatKRW(r.Max)
}
