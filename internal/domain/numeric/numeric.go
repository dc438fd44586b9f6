// Package numeric contains the small number helpers shared by the scoring
// and detection code: tolerant parsing of spreadsheet cells, rounding and
// finiteness checks.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a raw cell value. Blank and non-numeric cells are
// reported as absent (ok == false), never as zero.
func ParseNumber(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if decimalComma(s) {
			n, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		}
		if err != nil {
			return 0, false
		}
	}
	if !IsFinite(n) {
		return 0, false
	}
	return n, true
}

// decimalComma reports whether s reads as a spreadsheet decimal comma
// ("82,5", "102,25"). Three digits after the comma ("1,234") is a thousands
// separator and is not accepted.
func decimalComma(s string) bool {
	i := strings.IndexByte(s, ',')
	if i < 0 || strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return false
	}
	frac := s[i+1:]
	return len(frac) >= 1 && len(frac) <= 2
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Round rounds x to the given number of decimals, half away from zero.
// Non-finite values are returned unchanged.
func Round(x float64, decimals int) float64 {
	if !IsFinite(x) {
		return x
	}
	f := math.Pow(10, float64(decimals))
	return math.Round(x*f) / f
}

// Format renders a rounded value without trailing zeros ("3.963", "317").
func Format(x float64, decimals int) string {
	return strconv.FormatFloat(noNegZero(Round(x, decimals)), 'f', -1, 64)
}

// FormatFixed renders x with exactly the given number of decimals ("12.0").
func FormatFixed(x float64, decimals int) string {
	return strconv.FormatFloat(noNegZero(Round(x, decimals)), 'f', decimals, 64)
}

// noNegZero maps -0 to 0 so values that round away print as "0".
func noNegZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

// Mean returns the arithmetic mean of values; ok is false for an empty slice.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
