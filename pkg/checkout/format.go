package checkout

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders a fixed-point amount with its currency symbol for
// display. Unrecognized currency codes fall back to "<amount> <code>" rather
// than failing; formatting is cosmetic, charged amounts never pass through it.
func FormatAmount(amount int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d %s", amount, code)
	}
	return displayPrinter.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
