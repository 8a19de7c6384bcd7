package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// CorrelationMatrix is a symmetric Pearson matrix over numeric fields.
// Values[i][j] is undefined when fewer than two rows are present or either
// field has zero variance.
type CorrelationMatrix struct {
	Fields []string   `json:"fields"`
	Values [][]Metric `json:"values"`
}

// PairCorr is one off-diagonal entry.
type PairCorr struct {
	A string `json:"a"`
	B string `json:"b"`
	R Metric `json:"r"`
}

// ComputeCorrelation computes Pearson coefficients between every pair of
// fields. An empty fields list means every numeric field.
func ComputeCorrelation(view []pipeline.Record, fields []pipeline.NumericField) (*CorrelationMatrix, error) {
	if len(fields) == 0 {
		fields = pipeline.NumericFields
	}
	cols := make([][]float64, len(fields))
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Label()
		cols[i] = make([]float64, len(view))
		for j, r := range view {
			v, err := f.Value(r)
			if err != nil {
				return nil, fmt.Errorf("compute correlation: %w", err)
			}
			cols[i][j] = v
		}
	}
	n := len(fields)
	mat := make([][]Metric, n)
	for i := range mat {
		mat[i] = make([]Metric, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(cols[a], cols[b])
			if a == b && r.Defined() {
				r = 1
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrelationMatrix{Fields: names, Values: mat}, nil
}

// pearson is the two-pass sample correlation, clamped to [-1, 1].
func pearson(x, y []float64) Metric {
	if len(x) < 2 || len(x) != len(y) {
		return Undefined()
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	n := float64(len(x))
	mx /= n
	my /= n
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return Undefined()
	}
	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return Metric(r)
}

// At looks up the coefficient for two field labels.
func (m *CorrelationMatrix) At(a, b string) (Metric, bool) {
	ia, ib := -1, -1
	for i, f := range m.Fields {
		if f == a {
			ia = i
		}
		if f == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return Undefined(), false
	}
	return m.Values[ia][ib], true
}

// TopPairs lists defined off-diagonal pairs by |r| descending, at most limit
// (0 means all).
func (m *CorrelationMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	for i := range m.Fields {
		for j := i + 1; j < len(m.Fields); j++ {
			if r := m.Values[i][j]; r.Defined() {
				pairs = append(pairs, PairCorr{A: m.Fields[i], B: m.Fields[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R.Float()), math.Abs(pairs[j].R.Float())
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
