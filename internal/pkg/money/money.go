// Package money formats KHR amounts for the presentation boundary. Pricing
// math keeps full float precision; rounding to whole riel happens only here.
package money

import (
	"math"
	"strconv"
)

// RoundKHR rounds an amount to the nearest whole riel. Non-finite input is
// treated as zero.
func RoundKHR(value float64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return int64(math.Round(value))
}

// FormatKHR renders an amount as a grouped integer with the currency suffix,
// e.g. 55812.5 → "55,813 KHR".
func FormatKHR(value float64) string {
	return group(RoundKHR(value)) + " KHR"
}

func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) > 3 {
		var out []byte
		lead := len(s) % 3
		if lead > 0 {
			out = append(out, s[:lead]...)
		}
		for i := lead; i < len(s); i += 3 {
			if len(out) > 0 {
				out = append(out, ',')
			}
			out = append(out, s[i:i+3]...)
		}
		s = string(out)
	}
	if neg {
		return "-" + s
	}
	return s
}
