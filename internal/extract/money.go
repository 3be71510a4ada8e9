package extract

import (
	"strconv"
	"strings"
)

// ParseAmount normalizes a Brazilian monetary literal to a float: thousands
// separators are stripped and the decimal comma becomes a decimal point.
// "R$ 1.234,56" -> 1234.56, "R$ 10,00" -> 10.00. Unparseable input yields 0.
func ParseAmount(literal string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			return r
		}
		return -1
	}, literal)
	if cleaned == "" {
		return 0
	}

	if strings.Contains(cleaned, ",") {
		// Dots are thousands separators, the comma is the decimal mark.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if i := strings.LastIndex(cleaned, "."); i >= 0 {
		// No comma: a trailing ".dd" is a decimal mark, anything else is
		// thousands grouping.
		if len(cleaned)-i-1 != 2 || strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
