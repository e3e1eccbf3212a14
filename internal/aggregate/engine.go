// Package aggregate accumulates classified retraction records into
// per-country, per-year and per-category counts under both date bases.
package aggregate

import (
	"sort"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pubref"
)

// BucketKey identifies one (country, year, basis) bucket.
type BucketKey struct {
	Country string
	Year    int
	Basis   dataset.Basis
}

// Bucket holds the counts for one country-year under one basis.
type Bucket struct {
	Total      int
	Categories map[classify.Category]int
	Domains    map[string]int
}

func newBucket() *Bucket {
	return &Bucket{
		Categories: make(map[classify.Category]int),
		Domains:    make(map[string]int),
	}
}

// StatsKey identifies a country's lifetime counters under one basis.
type StatsKey struct {
	Country string
	Basis   dataset.Basis
}

// Stats are a country's counters across every parsed year.
type Stats struct {
	Country    string
	Total      int
	From1996   int
	Categories map[classify.Category]int
}

// EdgeKey is one direction of a collaboration between two countries.
type EdgeKey struct {
	A, B  string
	Basis dataset.Basis
}

// Collaboration is a partner country and the number of shared records.
type Collaboration struct {
	Country string
	Count   int
}

// Window limits which years of a basis are accepted.
type Window struct {
	From, To int
}

// Contains reports whether year lies within the window.
func (w Window) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

// Engine accumulates records. The zero value is not usable; call NewEngine.
type Engine struct {
	firstYear, lastYear int
	windows             map[dataset.Basis]Window

	buckets map[BucketKey]*Bucket
	stats   map[StatsKey]*Stats
	edges   map[EdgeKey]int

	countries map[dataset.Basis][]string
	records   int
	byCat     map[classify.Category]int
	latest    map[dataset.Basis]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindow drops records whose basis year falls outside w. Other bases
// are unaffected.
func WithWindow(b dataset.Basis, w Window) Option {
	return func(e *Engine) {
		e.windows[b] = w
	}
}

// WithYearRange overrides the year range used for buckets and rate tables.
func WithYearRange(first, last int) Option {
	return func(e *Engine) {
		e.firstYear, e.lastYear = first, last
	}
}

// NewEngine returns an empty engine covering the reference table years.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		firstYear: pubref.FirstYear,
		lastYear:  pubref.LastYear,
		windows:   make(map[dataset.Basis]Window),
		buckets:   make(map[BucketKey]*Bucket),
		stats:     make(map[StatsKey]*Stats),
		edges:     make(map[EdgeKey]int),
		countries: make(map[dataset.Basis][]string),
		byCat:     make(map[classify.Category]int),
		latest:    make(map[dataset.Basis]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// YearRange returns the inclusive bucket year range.
func (e *Engine) YearRange() (int, int) {
	return e.firstYear, e.lastYear
}

// Add accumulates one derived record. Under each basis the record counts
// only when its year for that basis parsed (and passes any window).
// It reports whether the record contributed to at least one basis.
func (e *Engine) Add(rec *dataset.Record) bool {
	if len(rec.Countries) == 0 {
		return false
	}
	contributed := false
	for _, b := range dataset.Bases {
		year, ok := rec.Year(b)
		if !ok {
			continue
		}
		if w, limited := e.windows[b]; limited && !w.Contains(year) {
			continue
		}
		contributed = true
		if year > e.latest[b] {
			e.latest[b] = year
		}
		for _, c := range rec.Countries {
			e.addCountry(rec, c, year, b)
		}
		for _, a := range rec.Countries {
			for _, o := range rec.Countries {
				if a != o {
					e.edges[EdgeKey{A: a, B: o, Basis: b}]++
				}
			}
		}
	}
	if contributed {
		e.records++
		e.byCat[rec.Category]++
	}
	return contributed
}

func (e *Engine) addCountry(rec *dataset.Record, country string, year int, b dataset.Basis) {
	sk := StatsKey{Country: country, Basis: b}
	s, ok := e.stats[sk]
	if !ok {
		s = &Stats{Country: country, Categories: make(map[classify.Category]int)}
		e.stats[sk] = s
		e.countries[b] = append(e.countries[b], country)
	}
	s.Total++
	s.Categories[rec.Category]++
	if year >= e.firstYear {
		s.From1996++
	}

	if year < e.firstYear || year > e.lastYear {
		return
	}
	bk := BucketKey{Country: country, Year: year, Basis: b}
	bucket, ok := e.buckets[bk]
	if !ok {
		bucket = newBucket()
		e.buckets[bk] = bucket
	}
	bucket.Total++
	bucket.Categories[rec.Category]++
	if b == dataset.Original {
		for _, d := range rec.Domains {
			bucket.Domains[d]++
		}
	}
}

// Records returns the number of records that contributed to any basis.
func (e *Engine) Records() int {
	return e.records
}

// CategoryCounts returns the per-category record counts.
func (e *Engine) CategoryCounts() map[classify.Category]int {
	out := make(map[classify.Category]int, len(e.byCat))
	for k, v := range e.byCat {
		out[k] = v
	}
	return out
}

// LatestYear returns the most recent year seen under basis.
func (e *Engine) LatestYear(b dataset.Basis) (int, bool) {
	y, ok := e.latest[b]
	return y, ok
}

// Countries returns the countries with data under basis, first-seen order.
func (e *Engine) Countries(b dataset.Basis) []string {
	out := make([]string, len(e.countries[b]))
	copy(out, e.countries[b])
	return out
}

// AllCountries returns every country seen under any basis, sorted.
func (e *Engine) AllCountries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range dataset.Bases {
		for _, c := range e.countries[b] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Stats returns the lifetime counters for country under basis. A country
// without data yields zero counts.
func (e *Engine) Stats(country string, b dataset.Basis) Stats {
	s, ok := e.stats[StatsKey{Country: country, Basis: b}]
	if !ok {
		return Stats{Country: country, Categories: map[classify.Category]int{}}
	}
	return *s
}

// Bucket returns the bucket for (country, year, basis).
func (e *Engine) Bucket(country string, year int, b dataset.Basis) (*Bucket, bool) {
	bucket, ok := e.buckets[BucketKey{Country: country, Year: year, Basis: b}]
	return bucket, ok
}

// Years returns the bucket years for country under basis, newest first.
func (e *Engine) Years(country string, b dataset.Basis) []int {
	var years []int
	for y := e.lastYear; y >= e.firstYear; y-- {
		if _, ok := e.buckets[BucketKey{Country: country, Year: y, Basis: b}]; ok {
			years = append(years, y)
		}
	}
	return years
}

// YearlyRetractions returns the bucket total for each year in range.
// Years without retractions are absent.
func (e *Engine) YearlyRetractions(country string, b dataset.Basis) map[int]int {
	out := make(map[int]int)
	for y := e.firstYear; y <= e.lastYear; y++ {
		if bucket, ok := e.buckets[BucketKey{Country: country, Year: y, Basis: b}]; ok && bucket.Total > 0 {
			out[y] = bucket.Total
		}
	}
	return out
}

// RangeRetractions sums the yearly retractions within the year range.
func (e *Engine) RangeRetractions(country string, b dataset.Basis) int {
	n := 0
	for _, v := range e.YearlyRetractions(country, b) {
		n += v
	}
	return n
}

// Edge returns the collaboration count from a to other under basis.
func (e *Engine) Edge(a, other string, b dataset.Basis) int {
	return e.edges[EdgeKey{A: a, B: other, Basis: b}]
}

// Collaborations returns country's partners, most shared records first.
// Ties are broken by partner name.
func (e *Engine) Collaborations(country string, b dataset.Basis) []Collaboration {
	var out []Collaboration
	for k, n := range e.edges {
		if k.A == country && k.Basis == b {
			out = append(out, Collaboration{Country: k.B, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// Edges returns every directed edge under basis.
func (e *Engine) Edges(b dataset.Basis) map[EdgeKey]int {
	out := make(map[EdgeKey]int)
	for k, n := range e.edges {
		if k.Basis == b {
			out[k] = n
		}
	}
	return out
}
