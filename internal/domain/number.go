package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseValue converts a Polish-locale numeric cell ("12 345,67 zł") to a
// float. Every character except digits and commas is discarded, the first
// comma becomes the decimal point, and anything from a second comma onward is
// ignored ("1,234,5" reads as 1.234). Returns false for empty, unparseable,
// non-finite or non-positive values.
func ParseValue(cell string) (float64, bool) {
	var b strings.Builder
	b.Grow(len(cell))
	seenComma := false
scan:
	for _, r := range cell {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			if seenComma {
				break scan
			}
			seenComma = true
			b.WriteByte('.')
		}
	}

	s := b.String()
	if s == "" || s == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return v, true
}
