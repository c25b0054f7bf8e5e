package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is displayed in place of an undefined value
const NotAvailable = "N/A"

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPercent renders a fraction as a percentage with two decimals: 0.12345 -> "12.35%"
func FormatPercent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(Round2(fraction*100), 'f', 2, 64) + "%"
}

// FormatRatio renders a plain number with two decimals
func FormatRatio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// ParsePercent is the inverse of FormatPercent: "12.35%" -> 0.1235
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("percent value %q lacks a %% suffix", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("parse percent %q: %w", s, err)
	}
	return v / 100, nil
}

// optional returns a pointer to v, or nil when v is not finite
func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
