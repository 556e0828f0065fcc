package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// rePriceToken matches an optional currency symbol followed by a numeric
// token of digits, dots and commas.
var rePriceToken = regexp.MustCompile(`^[€£$]?([0-9][0-9.,]*)`)

// ParsePrice parses a free-form price string into a numeric value, handling
// European vs. US decimal/thousands-separator conventions:
//
//   - both "." and "," present → "." is a thousands separator, "," is the
//     decimal mark ("1.234,56" → 1234.56)
//   - only "," present → decimal mark ("19,99" → 19.99)
//   - otherwise parsed as-is ("19.99" → 19.99)
//
// The returned currency is taken only from the hint; the symbol itself is not
// mapped to an ISO code. A nil price means the string could not be parsed to
// a finite number.
func ParsePrice(raw string, currencyHint string) (*float64, string) {
	currency := strings.TrimSpace(currencyHint)

	// Strip all whitespace, including non-breaking space.
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	m := rePriceToken.FindStringSubmatch(s)
	if m == nil {
		return nil, currency
	}

	tok := m[1]
	switch {
	case strings.Contains(tok, ".") && strings.Contains(tok, ","):
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.ReplaceAll(tok, ",", ".")
	case strings.Contains(tok, ","):
		tok = strings.ReplaceAll(tok, ",", ".")
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, currency
	}
	return &v, currency
}
