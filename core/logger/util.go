package logger

import (
	"strconv"
	"strings"
	"time"
)

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Took is RoundMS(time.Since(start)).
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// SummarizeStrings renders at most limit values for a log attribute, noting
// how many were left out, and reports whether anything was cut.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	head := strings.Join(values[:limit], ", ")
	rest := "+" + strconv.Itoa(len(values)-limit) + " more"
	if head == "" {
		return rest, true
	}
	return head + ", " + rest, true
}
