// Package render turns market results into short human-readable text.
package render

import (
	"fmt"
	"strings"

	"bitbank-mcp/internal/pair"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const na = "N/A"

var printer = message.NewPrinter(language.Japanese)

// Price groups digits the ja-JP way with up to three decimals, prefixing ¥
// for JPY quotes.
func Price(v *float64, isJPY bool) string {
	if v == nil {
		return na
	}
	s := printer.Sprint(number.Decimal(*v, number.MaxFractionDigits(3)))
	if isJPY {
		return "¥" + s
	}
	return s
}

func PriceOf(v float64, isJPY bool) string {
	return Price(&v, isJPY)
}

// Change renders +1.23% / -0.50%, or "" when unknown.
func Change(pct *float64) string {
	if pct == nil {
		return ""
	}
	sign := ""
	if *pct >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, *pct)
}

// Volume abbreviates thousands as K.
func Volume(v *float64, base string) string {
	if v == nil {
		return na
	}
	if *v >= 1000 {
		return fmt.Sprintf("%.2fK %s", *v/1000, base)
	}
	return fmt.Sprintf("%.4f %s", *v, base)
}

func Yen(v int64) string {
	return "¥" + printer.Sprint(number.Decimal(v))
}

func Pair(p string) string {
	return pair.Display(p)
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}
