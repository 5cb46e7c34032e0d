package analytics

import (
	"fmt"
	"strconv"
)

// Abbreviate collapses a figure into the compact display form used across
// the dashboard: one decimal with a K/M/B suffix above the thousand,
// million and billion thresholds, the plain number below a thousand.
func Abbreviate(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}
