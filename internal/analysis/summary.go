package analysis

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// Summary holds the headline figures for a view.
type Summary struct {
	Count             int    `json:"count"`
	MeanUsageHours    Metric `json:"mean_usage_hours"`
	AffectedCount     int    `json:"affected_count"`
	AffectedPercent   Metric `json:"affected_percent"`
	MeanAddictedScore Metric `json:"mean_addicted_score"`
}

// ComputeSummary summarizes view. Means and the percentage are undefined when
// the view is empty.
func ComputeSummary(view []pipeline.Record) Summary {
	s := Summary{Count: len(view)}
	if len(view) == 0 {
		s.MeanUsageHours = Undefined()
		s.AffectedPercent = Undefined()
		s.MeanAddictedScore = Undefined()
		return s
	}
	var usage, score float64
	for _, r := range view {
		usage += r.AvgDailyUsageHours
		score += r.AddictedScore
		if r.AffectsAcademicPerformance {
			s.AffectedCount++
		}
	}
	n := float64(len(view))
	s.MeanUsageHours = Metric(usage / n)
	s.MeanAddictedScore = Metric(score / n)
	s.AffectedPercent = percent(s.AffectedCount, len(view))
	return s
}

// CategoryCount is one bucket of a distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Percent  Metric `json:"percent"`
}

// Distribution counts rows per category, sorted by category ascending.
type Distribution struct {
	Field  string          `json:"field"`
	Total  int             `json:"total"`
	Counts []CategoryCount `json:"counts"`
}

// Map returns the distribution as a plain category to count mapping.
func (d Distribution) Map() map[string]int {
	m := make(map[string]int, len(d.Counts))
	for _, c := range d.Counts {
		m[c.Category] = c.Count
	}
	return m
}

// ComputeDistribution counts view rows per distinct value of field.
func ComputeDistribution(view []pipeline.Record, field pipeline.GroupField) (Distribution, error) {
	counts := map[string]int{}
	for _, r := range view {
		k, err := field.Key(r)
		if err != nil {
			return Distribution{}, fmt.Errorf("compute distribution: %w", err)
		}
		counts[k]++
	}
	d := Distribution{Field: field.Label(), Total: len(view), Counts: make([]CategoryCount, 0, len(counts))}
	for k, c := range counts {
		d.Counts = append(d.Counts, CategoryCount{Category: k, Count: c, Percent: percent(c, len(view))})
	}
	sort.Slice(d.Counts, func(i, j int) bool { return d.Counts[i].Category < d.Counts[j].Category })
	return d, nil
}

// GroupMean is the mean of a numeric field within one group.
type GroupMean struct {
	Group string `json:"group"`
	Count int    `json:"count"`
	Mean  Metric `json:"mean"`
}

// ComputeGroupedMean averages value per observed group, ordered by group
// ascending. An empty view yields an empty slice.
func ComputeGroupedMean(view []pipeline.Record, group pipeline.GroupField, value pipeline.NumericField) ([]GroupMean, error) {
	type acc struct {
		n   int
		sum float64
	}
	groups := map[string]*acc{}
	for _, r := range view {
		k, err := group.Key(r)
		if err != nil {
			return nil, fmt.Errorf("compute grouped mean: %w", err)
		}
		v, err := value.Value(r)
		if err != nil {
			return nil, fmt.Errorf("compute grouped mean: %w", err)
		}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		a.sum += v
	}
	out := make([]GroupMean, 0, len(groups))
	for k, a := range groups {
		out = append(out, GroupMean{Group: k, Count: a.n, Mean: Metric(a.sum / float64(a.n))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}
