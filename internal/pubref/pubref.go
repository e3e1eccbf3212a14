// Package pubref loads the per-country, per-year publication counts used as
// the denominator of retraction rates.
package pubref

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/source"
	"github.com/sirupsen/logrus"
)

// Year range covered by the reference table and every rate table.
const (
	FirstYear = 1996
	LastYear  = 2024
)

// Table maps country -> year -> publication count.
type Table struct {
	countries []string
	yearly    map[string]map[int]float64
	totals    map[string]float64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		yearly: make(map[string]map[int]float64),
		totals: make(map[string]float64),
	}
}

// Set records a publication count, replacing any previous value.
func (t *Table) Set(country string, year int, count float64) {
	years, ok := t.yearly[country]
	if !ok {
		years = make(map[int]float64)
		t.yearly[country] = years
		t.countries = append(t.countries, country)
	}
	t.totals[country] += count - years[year]
	years[year] = count
}

// Has reports whether country appears in the table.
func (t *Table) Has(country string) bool {
	_, ok := t.yearly[country]
	return ok
}

// Publications returns the count for (country, year), 0 when absent.
func (t *Table) Publications(country string, year int) float64 {
	return t.yearly[country][year]
}

// Total returns the all-years sum for country, 0 when absent.
func (t *Table) Total(country string) float64 {
	return t.totals[country]
}

// Countries returns the vocabulary in file order.
func (t *Table) Countries() []string {
	out := make([]string, len(t.countries))
	copy(out, t.countries)
	return out
}

// Len returns the number of countries.
func (t *Table) Len() int {
	return len(t.countries)
}

// Empty reports whether the table has no countries.
func (t *Table) Empty() bool {
	return len(t.countries) == 0
}

// Load reads the reference CSV at location. A missing file is not an error:
// it is logged and an empty table is returned, so every rate becomes zero.
func Load(ctx context.Context, location string, log logrus.FieldLogger) (*Table, error) {
	rc, err := source.Open(ctx, location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", location).Warn("publication reference not found, retraction rates will be 0")
			return NewTable(), nil
		}
		return nil, err
	}
	defer rc.Close()

	t, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", location, err)
	}
	log.WithFields(logrus.Fields{"path": location, "countries": t.Len()}).Info("loaded publication reference")
	return t, nil
}

// Parse reads a "Country,1996,...,2024" table. Year columns outside
// [FirstYear, LastYear] are ignored; blank or non-numeric cells count as 0.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	countryCol := -1
	yearCols := make(map[int]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, "Country") {
			countryCol = i
			continue
		}
		if y, err := strconv.Atoi(h); err == nil && y >= FirstYear && y <= LastYear {
			yearCols[i] = y
		}
	}
	if countryCol < 0 {
		return nil, errors.New("missing Country column")
	}

	t := NewTable()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if countryCol >= len(row) {
			continue
		}
		country := strings.TrimSpace(row[countryCol])
		if country == "" {
			continue
		}
		if !t.Has(country) {
			t.yearly[country] = make(map[int]float64)
			t.countries = append(t.countries, country)
		}
		for col, year := range yearCols {
			if col >= len(row) {
				continue
			}
			t.Set(country, year, parseCount(row[col]))
		}
	}
	return t, nil
}

func parseCount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
