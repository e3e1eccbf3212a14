package aggregate

import (
	"math"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pubref"
)

// Rate returns retractions per 1000 publications rounded to four decimals.
// It is 0 whenever publications is not positive.
func Rate(retractions, publications float64) float64 {
	if publications <= 0 || math.IsNaN(publications) {
		return 0
	}
	return Round4(retractions / publications * 1000)
}

// Round4 rounds v to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// YearRate is one entry of a yearly rate table.
type YearRate struct {
	Year int
	Rate float64
}

// Denominators resolves dataset country names against the publication
// table and exposes the counts used as rate denominators.
type Denominators struct {
	table    *pubref.Table
	resolver *country.Resolver
}

// NewDenominators pairs a reference table with a resolver over its
// vocabulary. A nil table behaves as an empty one.
func NewDenominators(table *pubref.Table, threshold float64) *Denominators {
	if table == nil {
		table = pubref.NewTable()
	}
	return &Denominators{
		table:    table,
		resolver: country.NewResolver(table.Countries(), threshold),
	}
}

// Resolver exposes the underlying resolver, e.g. to persist its matches.
func (d *Denominators) Resolver() *country.Resolver {
	return d.resolver
}

// Table returns the reference table.
func (d *Denominators) Table() *pubref.Table {
	return d.table
}

// Resolve maps a dataset country to its reference-table name.
func (d *Denominators) Resolve(name string) country.Match {
	return d.resolver.Resolve(name)
}

// Total returns the all-years publication count for a dataset country, or 0
// when the name cannot be resolved.
func (d *Denominators) Total(name string) float64 {
	m := d.resolver.Resolve(name)
	if !m.OK() {
		return 0
	}
	return d.table.Total(m.Name)
}

// Publications returns the publication count for (country, year).
func (d *Denominators) Publications(name string, year int) float64 {
	m := d.resolver.Resolve(name)
	if !m.OK() {
		return 0
	}
	return d.table.Publications(m.Name, year)
}

// OverallRate is the summary-table rate: retractions from the first year on
// divided by all-years publications.
func (d *Denominators) OverallRate(e *Engine, name string, b dataset.Basis) float64 {
	return Rate(float64(e.Stats(name, b).From1996), d.Total(name))
}

// AverageRate divides the retractions inside the year range by all-years
// publications.
func (d *Denominators) AverageRate(e *Engine, name string, b dataset.Basis) float64 {
	return Rate(float64(e.RangeRetractions(name, b)), d.Total(name))
}

// YearlyRates returns the rate for each year of the range, oldest first.
// Years with neither retractions nor a positive rate are omitted.
func (d *Denominators) YearlyRates(e *Engine, name string, b dataset.Basis) []YearRate {
	first, last := e.YearRange()
	yearly := e.YearlyRetractions(name, b)
	var out []YearRate
	for y := first; y <= last; y++ {
		n := yearly[y]
		r := Rate(float64(n), d.Publications(name, y))
		if r > 0 || n > 0 {
			out = append(out, YearRate{Year: y, Rate: r})
		}
	}
	return out
}
