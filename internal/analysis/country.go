package analysis

import (
	"sort"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// CountryAggregate is the per-country rollup. Means are rounded to two
// decimals.
type CountryAggregate struct {
	Country           string  `json:"country"`
	MeanAddictedScore float64 `json:"mean_addicted_score"`
	Students          int     `json:"students"`
	MeanUsageHours    float64 `json:"mean_usage_hours"`
}

// ComputeCountryAggregates groups view by country, ordered by mean addiction
// score descending with ties broken by country name ascending.
func ComputeCountryAggregates(view []pipeline.Record) []CountryAggregate {
	type acc struct {
		n            int
		score, usage float64
	}
	byCountry := map[string]*acc{}
	for _, r := range view {
		a := byCountry[r.Country]
		if a == nil {
			a = &acc{}
			byCountry[r.Country] = a
		}
		a.n++
		a.score += r.AddictedScore
		a.usage += r.AvgDailyUsageHours
	}
	out := make([]CountryAggregate, 0, len(byCountry))
	for c, a := range byCountry {
		n := float64(a.n)
		out = append(out, CountryAggregate{
			Country:           c,
			MeanAddictedScore: round2(a.score / n),
			Students:          a.n,
			MeanUsageHours:    round2(a.usage / n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanAddictedScore == out[j].MeanAddictedScore {
			return out[i].Country < out[j].Country
		}
		return out[i].MeanAddictedScore > out[j].MeanAddictedScore
	})
	return out
}

// TopCountries returns the first n aggregates. n <= 0 keeps all of them.
func TopCountries(aggs []CountryAggregate, n int) []CountryAggregate {
	if n <= 0 || n >= len(aggs) {
		return append([]CountryAggregate(nil), aggs...)
	}
	return append([]CountryAggregate(nil), aggs[:n]...)
}
