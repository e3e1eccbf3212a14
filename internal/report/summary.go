// Package report turns aggregated retraction counts into the JSON documents
// read by the dashboard front end.
package report

import (
	"sort"
	"strconv"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/aggregate"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
)

// SummaryRow is one country in a dashboard table.
type SummaryRow struct {
	Country               string     `json:"country"`
	Alterations           int        `json:"alterations"`
	Research              int        `json:"research"`
	Integrity             int        `json:"integrity"`
	Supplemental          int        `json:"supplemental"`
	System                int        `json:"system"`
	Total                 int        `json:"total"`
	TotalFrom1996         int        `json:"total_from_1996"`
	TotalPublications     int64      `json:"total_publications"`
	RetractionRate        float64    `json:"retraction_rate"`
	YearlyRetractionRates OrderedMap `json:"yearly_retraction_rates"`
	CountryFlag           string     `json:"country_flag"`
}

// Summary builds the dashboard table for one basis, largest total first.
// Rows with equal totals are ordered by country name.
func Summary(e *aggregate.Engine, d *aggregate.Denominators, b dataset.Basis) []SummaryRow {
	countries := e.Countries(b)
	rows := make([]SummaryRow, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, summaryRow(e, d, c, b))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Country < rows[j].Country
	})
	return rows
}

func summaryRow(e *aggregate.Engine, d *aggregate.Denominators, name string, b dataset.Basis) SummaryRow {
	s := e.Stats(name, b)
	row := SummaryRow{
		Country:           name,
		Alterations:       s.Categories[classify.Serious],
		Research:          s.Categories[classify.Research],
		Integrity:         s.Categories[classify.Integrity],
		Supplemental:      s.Categories[classify.Supplemental],
		System:            s.Categories[classify.System],
		Total:             s.Total,
		TotalFrom1996:     s.From1996,
		TotalPublications: int64(d.Total(name)),
		RetractionRate:    d.OverallRate(e, name, b),
		CountryFlag:       country.FlagPath(name),
	}
	for _, yr := range d.YearlyRates(e, name, b) {
		row.YearlyRetractionRates.Set(strconv.Itoa(yr.Year), yr.Rate)
	}
	return row
}

// SortedByTotal reports whether rows are in non-increasing total order.
func SortedByTotal(rows []SummaryRow) bool {
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Total < rows[i].Total {
			return false
		}
	}
	return true
}
