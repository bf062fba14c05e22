package command

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money amounts as locale-grouped integers with a
// currency suffix.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter creates a Formatter. An unparsable locale falls back to
// Vietnamese; an empty currency falls back to "đ".
func NewFormatter(locale, currency string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Vietnamese
	}
	if strings.TrimSpace(currency) == "" {
		currency = "đ"
	}
	return Formatter{printer: message.NewPrinter(tag), currency: currency}
}

// Money formats an amount, rounded to the nearest unit.
func (f Formatter) Money(amount float64) string {
	if f.printer == nil {
		f = NewFormatter("vi", f.currency)
	}
	return f.printer.Sprintf("%d", clampUnits(amount)) + " " + f.currency
}

// moneyLimit keeps rounded amounts inside the int64 range.
const moneyLimit = 1e18

func clampUnits(amount float64) int64 {
	switch {
	case math.IsNaN(amount):
		return 0
	case amount > moneyLimit:
		return int64(moneyLimit)
	case amount < -moneyLimit:
		return -int64(moneyLimit)
	}
	return int64(math.Round(amount))
}

// Percent formats a percentage with one decimal.
func (f Formatter) Percent(p float64) string {
	if f.printer == nil {
		f = NewFormatter("vi", f.currency)
	}
	return f.printer.Sprintf("%.1f", p) + "%"
}
