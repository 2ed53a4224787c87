package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// nbsp is the non-breaking space used by French number formatting, both as
// thousands separator and before the currency sign.
const nbsp = " "

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatEUR renders an amount the French way: "1 234,56 €".
func FormatEUR(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(nbsp)
	b.WriteString("€")
	return b.String()
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FrenchMonth returns the lowercase French month name, e.g. "mai".
func FrenchMonth(m time.Month) string {
	return frenchMonths[m-1]
}
