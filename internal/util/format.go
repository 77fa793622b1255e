// Package util holds small formatting and file helpers shared by the
// scanner, cache and presentation code.
package util

import (
	"fmt"
	"strconv"
)

var sizeUnits = []struct {
	suffix string
	shift  uint
}{
	{"TB", 40},
	{"GB", 30},
	{"MB", 20},
	{"KB", 10},
}

// FormatSize renders bytes in binary units with two decimals ("1.50 KB").
// Values under 1 KiB are exact and negative values clamp to "0 B".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	for _, u := range sizeUnits {
		if unit := int64(1) << u.shift; bytes >= unit {
			return fmt.Sprintf("%.2f %s", float64(bytes)/float64(unit), u.suffix)
		}
	}
	return strconv.FormatInt(bytes, 10) + " B"
}

var countUnits = []struct {
	suffix string
	div    int64
}{
	{"B", 1_000_000_000},
	{"M", 1_000_000},
	{"K", 1_000},
}

// FormatCount renders n with one decimal and a K/M/B suffix once it
// reaches a thousand.
func FormatCount(n int64) string {
	for _, u := range countUnits {
		if n >= u.div {
			return fmt.Sprintf("%.1f%s", float64(n)/float64(u.div), u.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}

// TruncateString cuts s to at most maxLen runes, ending in "..." when there
// is room for it.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	switch {
	case len(runes) <= maxLen:
		return s
	case maxLen <= 3:
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
