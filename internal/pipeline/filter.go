package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
)

// ApplySelection keeps the records whose field equals value exactly,
// preserving order. FieldNone keeps everything. The result is always a
// fresh slice.
func ApplySelection(in []Record, f Field, value string) ([]Record, error) {
	var match func(Record) bool
	switch f {
	case FieldNone:
		return append([]Record(nil), in...), nil
	case FieldID:
		id, err := dataset.ParseInt(strings.TrimSpace(value))
		if err != nil {
			// not an identifier, so nothing can equal it
			return []Record{}, nil
		}
		match = func(r Record) bool { return r.StudentID == id }
	case FieldCountry:
		match = func(r Record) bool { return r.Country == value }
	case FieldPlatform:
		match = func(r Record) bool { return r.MostUsedPlatform == value }
	case FieldAcademicLevel:
		match = func(r Record) bool { return r.AcademicLevel == value }
	case FieldGender:
		match = func(r Record) bool { return r.Gender == value }
	default:
		return nil, &UnknownFieldError{Kind: "selection", Field: f.String(), Allowed: fieldNames}
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ApplyRangeFilters keeps records with ageMin <= age <= ageMax and
// score >= addictionMin.
func ApplyRangeFilters(in []Record, ageMin, ageMax int, addictionMin float64) ([]Record, error) {
	if ageMin > ageMax {
		return nil, &InvalidRangeError{AgeMin: ageMin, AgeMax: ageMax}
	}
	if math.IsNaN(addictionMin) {
		return nil, &InvalidRangeError{AgeMin: ageMin, AgeMax: ageMax, Reason: "minimum addiction score is not a number"}
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if r.Age >= ageMin && r.Age <= ageMax && r.AddictedScore >= addictionMin {
			out = append(out, r)
		}
	}
	return out, nil
}

// FilterSpec is one optional equality selection plus the range predicates.
// Nil bounds are unconstrained.
type FilterSpec struct {
	SearchBy Field    `json:"search_by" yaml:"search_by"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	AgeMin   *int     `json:"age_min,omitempty" yaml:"age_min,omitempty"`
	AgeMax   *int     `json:"age_max,omitempty" yaml:"age_max,omitempty"`
	MinScore *float64 `json:"min_score,omitempty" yaml:"min_score,omitempty"`
}

// Bounds resolves the range predicates, filling unset ones with open limits.
func (s FilterSpec) Bounds() (ageMin, ageMax int, minScore float64) {
	ageMin, ageMax, minScore = math.MinInt, math.MaxInt, math.Inf(-1)
	if s.AgeMin != nil {
		ageMin = *s.AgeMin
	}
	if s.AgeMax != nil {
		ageMax = *s.AgeMax
	}
	if s.MinScore != nil {
		minScore = *s.MinScore
	}
	return ageMin, ageMax, minScore
}

// Validate reports malformed bounds without filtering anything.
func (s FilterSpec) Validate() error {
	lo, hi, minScore := s.Bounds()
	_, err := ApplyRangeFilters(nil, lo, hi, minScore)
	return err
}

// Apply runs the selection and then the range filters.
func (s FilterSpec) Apply(in []Record) ([]Record, error) {
	out, err := ApplySelection(in, s.SearchBy, s.Value)
	if err != nil {
		return nil, fmt.Errorf("apply selection: %w", err)
	}
	lo, hi, minScore := s.Bounds()
	out, err = ApplyRangeFilters(out, lo, hi, minScore)
	if err != nil {
		return nil, fmt.Errorf("apply range filters: %w", err)
	}
	return out, nil
}

// Describe renders the spec as a short human-readable line.
func (s FilterSpec) Describe() string {
	var parts []string
	if s.SearchBy != FieldNone {
		parts = append(parts, fmt.Sprintf("%s = %q", s.SearchBy, s.Value))
	}
	switch {
	case s.AgeMin != nil && s.AgeMax != nil:
		parts = append(parts, fmt.Sprintf("age %d-%d", *s.AgeMin, *s.AgeMax))
	case s.AgeMin != nil:
		parts = append(parts, fmt.Sprintf("age >= %d", *s.AgeMin))
	case s.AgeMax != nil:
		parts = append(parts, fmt.Sprintf("age <= %d", *s.AgeMax))
	}
	if s.MinScore != nil {
		parts = append(parts, "score >= "+strconv.FormatFloat(*s.MinScore, 'f', -1, 64))
	}
	if len(parts) == 0 {
		return "all rows"
	}
	return strings.Join(parts, ", ")
}
