package http

import (
	"strings"
	"time"
)

// parseDate parses a form date in YYYY-MM-DD format as a UTC calendar day.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
