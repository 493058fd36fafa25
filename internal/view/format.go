package view

import (
	"fmt"
	"strings"
)

// FormatProbability renders a [0,1] rise probability as "78.0%".
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatReturn renders a signed percent return as "+5.20%" or "-3.10%".
func FormatReturn(r float64) string {
	return fmt.Sprintf("%+.2f%%", r)
}

// FormatScore renders a [0,1] score with two decimals.
func FormatScore(s float64) string {
	return fmt.Sprintf("%.2f", s)
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPrice renders a price: comma-grouped whole numbers for won-scale
// values, two decimals below that.
func FormatPrice(p float64) string {
	if p <= 0 {
		return "-"
	}
	if p >= 1000 {
		return FormatInt(int(p + 0.5))
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatVolume formats a share volume with B/M/K suffixes.
func FormatVolume(v int64) string {
	f := float64(v)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}
