// Package pricing turns free-form catalog price labels into numbers and
// numbers back into display text. Labels come from arbitrary markup
// (currency glyphs, thousands separators, strike-through old prices),
// so parsing always degrades to 0 instead of failing an add-to-cart.
package pricing

import (
	"math"
	"regexp"
	"strconv"
)

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// Parse extracts a monetary value from display text. Every character
// that is not a digit or decimal point is stripped, then the longest
// valid numeric prefix of the remainder is parsed. Empty or unparseable
// input yields 0; Parse never fails.
func Parse(text string) float64 {
	cleaned := nonNumeric.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}

	// A second decimal point ends the number, e.g. "1.299.00" parses
	// as 1.299. This matches lenient browser-style prefix parsing.
	end := len(cleaned)
	seenDot := false
	for i, r := range cleaned {
		if r == '.' {
			if seenDot {
				end = i
				break
			}
			seenDot = true
		}
	}

	v, err := strconv.ParseFloat(cleaned[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
