package rental

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every amount shown to people.
const CurrencySymbol = "KSh"

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with thousands separators and two decimals,
// e.g. "KSh 15,000.00".
func FormatAmount(amount decimal.Decimal) string {
	return CurrencySymbol + " " + amountPrinter.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}
