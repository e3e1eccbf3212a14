// Package dates turns the heterogeneous date strings found in retraction
// exports into calendar years.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// layouts are tried in order against the date portion of a value (everything
// before the first whitespace). Month/day/year wins over day/month/year for
// ambiguous values such as 03/04/2020.
var layouts = []string{
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"2/1/2006",
	"2006",
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ExtractYear returns the calendar year encoded in raw, or false when no year
// can be recovered. It never fails loudly: malformed input is simply unknown.
func ExtractYear(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "nat":
		return 0, false
	}

	datePart := s
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		datePart = s[:i]
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return t.Year(), true
		}
	}

	if m := yearPattern.FindString(s); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return year, true
		}
	}

	// Written-out dates with years the pattern does not cover ("Jan 5, 1887").
	// Ambiguous two-digit years are rejected by ParseStrict.
	if t, err := dateparse.ParseStrict(s); err == nil {
		if y := t.Year(); y >= 1000 && y <= 9999 {
			return y, true
		}
	}
	return 0, false
}

// InRange reports whether year lies within [lo, hi].
func InRange(year, lo, hi int) bool {
	return year >= lo && year <= hi
}
