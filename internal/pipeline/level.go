package pipeline

import "github.com/KaramelBytes/socialpulse-cli/internal/dataset"

// AddictionLevel is the severity bucket derived from an addiction score.
type AddictionLevel string

const (
	Low      AddictionLevel = "Low"
	Moderate AddictionLevel = "Moderate"
	Severe   AddictionLevel = "Severe"
)

// Levels lists the buckets in ascending severity.
var Levels = []AddictionLevel{Low, Moderate, Severe}

// Classify maps a score onto its bucket: <=3 Low, <=6 Moderate, otherwise Severe.
// Scores outside the 1-10 scale are bucketed by the same comparison.
func Classify(score float64) AddictionLevel {
	switch {
	case score <= 3:
		return Low
	case score <= 6:
		return Moderate
	default:
		return Severe
	}
}

// Record is a dataset row together with its derived label.
type Record struct {
	dataset.Row
	Level AddictionLevel `json:"addiction_level"`
}

// DeriveLabels labels every row of ds. The result is a new slice; the
// dataset is not touched.
func DeriveLabels(ds *dataset.Dataset) []Record {
	out := make([]Record, ds.Len())
	for i := range out {
		r := ds.Row(i)
		out[i] = Record{Row: r, Level: Classify(r.AddictedScore)}
	}
	return out
}

