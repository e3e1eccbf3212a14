package report

import (
	"sort"
	"strconv"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/aggregate"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
)

// CountryPage is the per-country detail document.
type CountryPage struct {
	RetractionRateData RateData   `json:"retraction_rate_data"`
	DomainwiseData     DomainData `json:"domainwise_data"`
	CountryFlag        string     `json:"country_flag"`
}

// RateData holds the yearly rate and count tables for both bases.
type RateData struct {
	Country                 string     `json:"country"`
	YearlyRates             OrderedMap `json:"yearly_rates"`
	NoticeYearlyRates       OrderedMap `json:"notice_yearly_rates"`
	AverageRate             float64    `json:"average_rate"`
	YearlyRetractions       OrderedMap `json:"yearly_retractions"`
	NoticeYearlyRetractions OrderedMap `json:"notice_yearly_retractions"`
}

// DomainData holds the per-year breakdowns and collaboration rankings.
type DomainData struct {
	Country              string     `json:"country"`
	TotalRetractions     int        `json:"total_retractions"`
	Years                OrderedMap `json:"years"`
	NoticeYears          OrderedMap `json:"notice_years"`
	Collaborations       OrderedMap `json:"collaborations"`
	NoticeCollaborations OrderedMap `json:"notice_collaborations"`
}

// YearDetail is one year of a country's breakdown.
type YearDetail struct {
	Total  int        `json:"total"`
	Marks  OrderedMap `json:"marks"`
	Domain OrderedMap `json:"domain"`
}

// Page builds the detail document for one country.
func Page(e *aggregate.Engine, d *aggregate.Denominators, name string) CountryPage {
	rd := RateData{
		Country:                 name,
		YearlyRates:             rateMap(d.YearlyRates(e, name, dataset.Original)),
		NoticeYearlyRates:       rateMap(d.YearlyRates(e, name, dataset.Notice)),
		AverageRate:             d.AverageRate(e, name, dataset.Original),
		YearlyRetractions:       countMap(e, e.YearlyRetractions(name, dataset.Original)),
		NoticeYearlyRetractions: countMap(e, e.YearlyRetractions(name, dataset.Notice)),
	}
	dd := DomainData{
		Country:              name,
		TotalRetractions:     e.Stats(name, dataset.Original).Total,
		Years:                yearDetails(e, name, dataset.Original),
		NoticeYears:          yearDetails(e, name, dataset.Notice),
		Collaborations:       collaborationMap(e.Collaborations(name, dataset.Original)),
		NoticeCollaborations: collaborationMap(e.Collaborations(name, dataset.Notice)),
	}
	return CountryPage{
		RetractionRateData: rd,
		DomainwiseData:     dd,
		CountryFlag:        country.FlagPath(name),
	}
}

func rateMap(rates []aggregate.YearRate) OrderedMap {
	var m OrderedMap
	for _, r := range rates {
		m.Set(strconv.Itoa(r.Year), r.Rate)
	}
	return m
}

// countMap lists yearly counts oldest first.
func countMap(e *aggregate.Engine, counts map[int]int) OrderedMap {
	var m OrderedMap
	first, last := e.YearRange()
	for y := first; y <= last; y++ {
		if n := counts[y]; n > 0 {
			m.Set(strconv.Itoa(y), n)
		}
	}
	return m
}

func yearDetails(e *aggregate.Engine, name string, b dataset.Basis) OrderedMap {
	var m OrderedMap
	for _, y := range e.Years(name, b) {
		bucket, _ := e.Bucket(name, y, b)
		detail := YearDetail{Total: bucket.Total}
		for _, c := range classify.Priority {
			if n := bucket.Categories[c]; n > 0 {
				detail.Marks.Set(c.DetailKey(), n)
			}
		}
		for _, dom := range sortedDomains(bucket.Domains) {
			detail.Domain.Set(dom, bucket.Domains[dom])
		}
		m.Set(strconv.Itoa(y), detail)
	}
	return m
}

// sortedDomains orders domains by count, then code.
func sortedDomains(domains map[string]int) []string {
	keys := make([]string, 0, len(domains))
	for k := range domains {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if domains[keys[i]] != domains[keys[j]] {
			return domains[keys[i]] > domains[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func collaborationMap(collabs []aggregate.Collaboration) OrderedMap {
	var m OrderedMap
	for _, c := range collabs {
		m.Set(c.Country, c.Count)
	}
	return m
}
