package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// Description is the five-number summary plus mean and sample deviation of
// a numeric field.
type Description struct {
	Field string `json:"field"`
	Count int    `json:"count"`
	Mean  Metric `json:"mean"`
	Std   Metric `json:"std"`
	Min   Metric `json:"min"`
	P25   Metric `json:"p25"`
	P50   Metric `json:"p50"`
	P75   Metric `json:"p75"`
	Max   Metric `json:"max"`
}

// GroupDescription is a Description restricted to one group.
type GroupDescription struct {
	Group string `json:"group"`
	Description
}

// Describe summarizes field over view. Everything but Count is undefined
// for an empty view; Std needs at least two rows.
func Describe(view []pipeline.Record, field pipeline.NumericField) (Description, error) {
	vals := make([]float64, len(view))
	for i, r := range view {
		v, err := field.Value(r)
		if err != nil {
			return Description{}, fmt.Errorf("describe: %w", err)
		}
		vals[i] = v
	}
	return describe(field.Label(), vals), nil
}

// DescribeBy runs Describe once per group, ordered by group ascending.
func DescribeBy(view []pipeline.Record, field pipeline.NumericField, group pipeline.GroupField) ([]GroupDescription, error) {
	vals := map[string][]float64{}
	for _, r := range view {
		k, err := group.Key(r)
		if err != nil {
			return nil, fmt.Errorf("describe by group: %w", err)
		}
		v, err := field.Value(r)
		if err != nil {
			return nil, fmt.Errorf("describe by group: %w", err)
		}
		vals[k] = append(vals[k], v)
	}
	out := make([]GroupDescription, 0, len(vals))
	for k, vs := range vals {
		out = append(out, GroupDescription{Group: k, Description: describe(field.Label(), vs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}

func describe(name string, vals []float64) Description {
	d := Description{Field: name, Count: len(vals)}
	if len(vals) == 0 {
		u := Undefined()
		d.Mean, d.Std, d.Min, d.P25, d.P50, d.P75, d.Max = u, u, u, u, u, u, u
		return d
	}
	// Welford
	var n int
	var m, m2 float64
	for _, x := range vals {
		n++
		delta := x - m
		m += delta / float64(n)
		m2 += delta * (x - m)
	}
	d.Mean = Metric(m)
	d.Std = Undefined()
	if n > 1 {
		d.Std = Metric(math.Sqrt(m2 / float64(n-1)))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	d.Min = Metric(sorted[0])
	d.P25 = Metric(quantile(sorted, 0.25))
	d.P50 = Metric(quantile(sorted, 0.5))
	d.P75 = Metric(quantile(sorted, 0.75))
	d.Max = Metric(sorted[len(sorted)-1])
	return d
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// DefaultBins matches the score histogram of the dashboard.
const DefaultBins = 10

// Histogram counts values in equal-width bins. Edges has len(Counts)+1
// entries. When split, Groups holds per-group counts aligned with Counts.
type Histogram struct {
	Field  string           `json:"field"`
	Edges  []float64        `json:"edges"`
	Counts []int            `json:"counts"`
	Split  string           `json:"split,omitempty"`
	Groups []HistogramGroup `json:"groups,omitempty"`
}

type HistogramGroup struct {
	Group  string `json:"group"`
	Counts []int  `json:"counts"`
}

// ComputeHistogram bins field over view. bins <= 0 uses DefaultBins.
func ComputeHistogram(view []pipeline.Record, field pipeline.NumericField, bins int) (Histogram, error) {
	return computeHistogram(view, field, bins, nil)
}

// ComputeHistogramBy bins field and also splits each bin by group.
func ComputeHistogramBy(view []pipeline.Record, field pipeline.NumericField, bins int, group pipeline.GroupField) (Histogram, error) {
	return computeHistogram(view, field, bins, &group)
}

func computeHistogram(view []pipeline.Record, field pipeline.NumericField, bins int, group *pipeline.GroupField) (Histogram, error) {
	if bins <= 0 {
		bins = DefaultBins
	}
	h := Histogram{Field: field.Label(), Counts: []int{}}
	if group != nil {
		h.Split = group.Label()
	}
	if len(view) == 0 {
		return h, nil
	}
	vals := make([]float64, len(view))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range view {
		v, err := field.Value(r)
		if err != nil {
			return Histogram{}, fmt.Errorf("compute histogram: %w", err)
		}
		vals[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	h.Edges = make([]float64, bins+1)
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi
	h.Counts = make([]int, bins)
	perGroup := map[string][]int{}
	for i, v := range vals {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		h.Counts[b]++
		if group != nil {
			k, err := group.Key(view[i])
			if err != nil {
				return Histogram{}, fmt.Errorf("compute histogram: %w", err)
			}
			if perGroup[k] == nil {
				perGroup[k] = make([]int, bins)
			}
			perGroup[k][b]++
		}
	}
	for k, c := range perGroup {
		h.Groups = append(h.Groups, HistogramGroup{Group: k, Counts: c})
	}
	sort.Slice(h.Groups, func(i, j int) bool { return h.Groups[i].Group < h.Groups[j].Group })
	return h, nil
}
