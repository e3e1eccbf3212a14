// Package dataset reads retraction-notice exports and derives the fields the
// aggregation needs from each row.
package dataset

import (
	"regexp"
	"strings"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dates"
)

// IncludedNature is the only RetractionNature value that is aggregated.
const IncludedNature = "Retraction"

// Basis selects which date buckets a record by year.
type Basis string

const (
	Original Basis = "original"
	Notice   Basis = "notice"
)

// Bases lists both date bases in output order.
var Bases = []Basis{Original, Notice}

// Record is one retraction notice.
type Record struct {
	Line              int
	RetractionNature  string
	Country           string
	Reason            string
	Subject           string
	OriginalPaperDate string
	RetractionDate    string

	// Derived by Derive.
	Countries    []string
	OriginalYear int
	NoticeYear   int
	HasOriginal  bool
	HasNotice    bool
	Category     classify.Category
	Domains      []string
}

// Included reports whether the record is a retraction (not a correction,
// expression of concern, etc.). The nature must match exactly.
func (r *Record) Included() bool {
	return r.RetractionNature == IncludedNature
}

// Year returns the record's year under basis.
func (r *Record) Year(b Basis) (int, bool) {
	if b == Notice {
		return r.NoticeYear, r.HasNotice
	}
	return r.OriginalYear, r.HasOriginal
}

// Derive fills the derived fields using rules for the category.
func (r *Record) Derive(rules *classify.RuleSet) {
	r.Countries = ParseCountries(r.Country)
	r.OriginalYear, r.HasOriginal = dates.ExtractYear(r.OriginalPaperDate)
	r.NoticeYear, r.HasNotice = dates.ExtractYear(r.RetractionDate)
	r.Category = rules.Classify(r.Reason)
	r.Domains = ParseDomains(r.Subject)
}

// ParseCountries splits a semicolon-delimited country field. Blank and
// "unknown" entries are dropped, as are repeats of an earlier entry.
func ParseCountries(field string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(field, ";") {
		c := strings.TrimSpace(part)
		if c == "" || seen[c] {
			continue
		}
		switch strings.ToLower(c) {
		case "unknown", "nan", "none":
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

var domainCode = regexp.MustCompile(`\(([A-Z/]+)\)`)

// ParseDomains extracts parenthesized domain codes such as "(BLS)" from a
// subject field. A subject without codes yields a single blank domain.
func ParseDomains(subject string) []string {
	var out []string
	for _, m := range domainCode.FindAllStringSubmatch(subject, -1) {
		if d := strings.TrimSpace(m[1]); d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
