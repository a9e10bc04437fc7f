package rates

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"TWD": "NT$",
}

var printer = message.NewPrinter(language.BritishEnglish)

// Format renders amount as "<symbol> <sign><digits>", e.g. "£ -1,234.50". Unknown
// currencies use their code as the symbol.
func Format(amount float64, currency string) string {
	symbol, ok := symbols[normalize(currency)]
	if !ok {
		symbol = currency
	}

	sign := ""
	if amount < 0 {
		sign = "-"
	}

	return printer.Sprintf("%s %s%.2f", symbol, sign, math.Abs(amount))
}
