package client

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars, e.g. "$1,200.00".
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return usd.Sprintf("-$%.2f", -amount)
	}
	return usd.Sprintf("$%.2f", amount)
}
