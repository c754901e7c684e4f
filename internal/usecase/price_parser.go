package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// Currency symbols and ISO codes stripped before number detection
	currencyTokenPattern = regexp.MustCompile(`(?i)(?:US\$|C\$|A\$|R\$|zł|€|£|¥|₹|₽|₩|₺|\$)|\b(?:USD|EUR|GBP|CNY|RMB|JPY|INR|RUB|KRW|TRY|BRL|PLN|SEK|NOK|DKK|CHF|CAD|AUD|MXN|kr)\b`)

	// First numeric run, separators included
	numericRunPattern = regexp.MustCompile(`-?\d[\d.,]*`)

	isoCodePattern = regexp.MustCompile(`\b(USD|EUR|GBP|CNY|RMB|JPY|INR|RUB|KRW|TRY|BRL|PLN|SEK|NOK|DKK|CHF|CAD|AUD|MXN)\b`)
)

// currencySymbols maps symbols to ISO codes; multi-character symbols come first
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"C$", "CAD"},
	{"A$", "AUD"},
	{"R$", "BRL"},
	{"zł", "PLN"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "CNY"},
	{"₹", "INR"},
	{"₽", "RUB"},
	{"₩", "KRW"},
	{"₺", "TRY"},
	{"$", "USD"},
}

// ParsePrice extracts a non-negative price from a string or numeric value.
// Anything it cannot read yields zero.
func ParsePrice(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return clampPrice(v)
	case float64:
		return priceFromFloat(v)
	case float32:
		return priceFromFloat(float64(v))
	case int:
		return clampPrice(decimal.NewFromInt(int64(v)))
	case int64:
		return clampPrice(decimal.NewFromInt(v))
	case json.Number:
		return parsePriceString(v.String())
	case string:
		return parsePriceString(v)
	default:
		return parsePriceString(fmt.Sprint(v))
	}
}

func priceFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return clampPrice(decimal.NewFromFloat(f))
}

func clampPrice(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func parsePriceString(s string) decimal.Decimal {
	s = currencyTokenPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		// unicode.IsSpace covers NBSP and the narrow NBSP used for French grouping
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)

	run := numericRunPattern.FindString(s)
	if run == "" {
		return decimal.Zero
	}

	normalized := normalizeSeparators(strings.TrimRight(run, ".,"))
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero
	}
	return clampPrice(d)
}

// normalizeSeparators rewrites a numeric run so that '.' is the only decimal separator.
// With both separators present the last one is the decimal separator. A lone
// separator followed by exactly three digits is treated as grouping only when it
// is a comma or repeats.
func normalizeSeparators(run string) string {
	hasComma := strings.Contains(run, ",")
	hasDot := strings.Contains(run, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(run, ",") > strings.LastIndex(run, ".") {
			// European: 1.234,56
			run = strings.ReplaceAll(run, ".", "")
			return strings.Replace(run, ",", ".", 1)
		}
		return strings.ReplaceAll(run, ",", "")

	case hasComma:
		return resolveSingleSeparator(run, ",", true)

	case hasDot:
		return resolveSingleSeparator(run, ".", false)
	}
	return run
}

func resolveSingleSeparator(run, sep string, groupOnThreeDigits bool) string {
	parts := strings.Split(run, sep)
	last := parts[len(parts)-1]

	if len(parts) > 2 {
		if len(last) == 3 {
			return strings.Join(parts, "")
		}
		return strings.Join(parts[:len(parts)-1], "") + "." + last
	}

	if groupOnThreeDigits && len(last) == 3 {
		return parts[0] + last
	}
	return parts[0] + "." + last
}

// DetectCurrency returns the ISO code for the first currency symbol or code in s
func DetectCurrency(s string) string {
	if m := isoCodePattern.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		if m[1] == "RMB" {
			return "CNY"
		}
		return m[1]
	}
	for _, cs := range currencySymbols {
		if strings.Contains(s, cs.symbol) {
			return cs.code
		}
	}
	return ""
}
