package pipeline

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
)

// Field names the attribute an equality selection applies to.
type Field int

const (
	FieldNone Field = iota
	FieldID
	FieldCountry
	FieldPlatform
	FieldAcademicLevel
	FieldGender
)

var fieldNames = []string{"none", "id", "country", "platform", "academic_level", "gender"}

var fieldAliases = map[string]Field{
	"all":                FieldNone,
	"":                   FieldNone,
	"student_id":         FieldID,
	"most_used_platform": FieldPlatform,
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// ParseField resolves a selection field name. Matching ignores case and
// treats '-' and ' ' like '_'.
func ParseField(s string) (Field, error) {
	key := normalizeName(s)
	for i, n := range fieldNames {
		if n == key {
			return Field(i), nil
		}
	}
	if f, ok := fieldAliases[key]; ok {
		return f, nil
	}
	return FieldNone, &UnknownFieldError{Kind: "selection", Field: s, Allowed: fieldNames}
}

func (f Field) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(fieldNames) {
		return nil, &UnknownFieldError{Kind: "selection", Field: f.String(), Allowed: fieldNames}
	}
	return []byte(fieldNames[f]), nil
}

func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// GroupField names a categorical attribute used for counting and grouping.
type GroupField int

const (
	GroupLevel GroupField = iota
	GroupCountry
	GroupPlatform
	GroupAcademicLevel
	GroupGender
	GroupAffectsAcademic
)

var groupNames = []string{"level", "country", "platform", "academic_level", "gender", "affects_academic"}

var groupAliases = map[string]GroupField{
	"addiction_level":              GroupLevel,
	"most_used_platform":           GroupPlatform,
	"affects_academic_performance": GroupAffectsAcademic,
}

var groupLabels = []string{
	dataset.LevelColumn, dataset.ColCountry, dataset.ColPlatform,
	dataset.ColAcademicLevel, dataset.ColGender, dataset.ColAffectsAcademic,
}

func (g GroupField) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return "group(" + strconv.Itoa(int(g)) + ")"
	}
	return groupNames[g]
}

// Label is the source column name for display.
func (g GroupField) Label() string {
	if g < 0 || int(g) >= len(groupLabels) {
		return g.String()
	}
	return groupLabels[g]
}

// ParseGroupField resolves a grouping field name.
func ParseGroupField(s string) (GroupField, error) {
	key := normalizeName(s)
	for i, n := range groupNames {
		if n == key {
			return GroupField(i), nil
		}
	}
	if g, ok := groupAliases[key]; ok {
		return g, nil
	}
	return 0, &UnknownFieldError{Kind: "group", Field: s, Allowed: groupNames}
}

// Key returns the category a record falls into.
func (g GroupField) Key(r Record) (string, error) {
	switch g {
	case GroupLevel:
		return string(r.Level), nil
	case GroupCountry:
		return r.Country, nil
	case GroupPlatform:
		return r.MostUsedPlatform, nil
	case GroupAcademicLevel:
		return r.AcademicLevel, nil
	case GroupGender:
		return r.Gender, nil
	case GroupAffectsAcademic:
		if r.AffectsAcademicPerformance {
			return "Yes", nil
		}
		return "No", nil
	}
	return "", &UnknownFieldError{Kind: "group", Field: g.String(), Allowed: groupNames}
}

// NumericField names a numeric attribute used for means and correlations.
type NumericField int

const (
	NumAge NumericField = iota
	NumUsageHours
	NumSleepHours
	NumMentalHealth
	NumConflicts
	NumAddictedScore
)

var numericNames = []string{"age", "usage_hours", "sleep_hours", "mental_health", "conflicts", "addicted_score"}

var numericAliases = map[string]NumericField{
	"avg_daily_usage_hours":       NumUsageHours,
	"usage":                       NumUsageHours,
	"sleep_hours_per_night":       NumSleepHours,
	"sleep":                       NumSleepHours,
	"mental_health_score":         NumMentalHealth,
	"conflicts_over_social_media": NumConflicts,
	"score":                       NumAddictedScore,
	"addiction_score":             NumAddictedScore,
}

var numericLabels = []string{
	dataset.ColAge, dataset.ColUsageHours, dataset.ColSleepHours,
	dataset.ColMentalHealth, dataset.ColConflicts, dataset.ColAddictedScore,
}

// NumericFields lists every numeric field in source order.
var NumericFields = []NumericField{NumAge, NumUsageHours, NumSleepHours, NumMentalHealth, NumConflicts, NumAddictedScore}

func (n NumericField) String() string {
	if n < 0 || int(n) >= len(numericNames) {
		return "numeric(" + strconv.Itoa(int(n)) + ")"
	}
	return numericNames[n]
}

// Label is the source column name for display.
func (n NumericField) Label() string {
	if n < 0 || int(n) >= len(numericLabels) {
		return n.String()
	}
	return numericLabels[n]
}

// ParseNumericField resolves a numeric field name.
func ParseNumericField(s string) (NumericField, error) {
	key := normalizeName(s)
	for i, n := range numericNames {
		if n == key {
			return NumericField(i), nil
		}
	}
	if n, ok := numericAliases[key]; ok {
		return n, nil
	}
	return 0, &UnknownFieldError{Kind: "numeric", Field: s, Allowed: numericNames}
}

// ParseNumericFields resolves a list of names; an empty list means all fields.
func ParseNumericFields(names []string) ([]NumericField, error) {
	if len(names) == 0 {
		return append([]NumericField(nil), NumericFields...), nil
	}
	out := make([]NumericField, 0, len(names))
	for _, s := range names {
		n, err := ParseNumericField(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Value returns the field's value for a record.
func (n NumericField) Value(r Record) (float64, error) {
	switch n {
	case NumAge:
		return float64(r.Age), nil
	case NumUsageHours:
		return r.AvgDailyUsageHours, nil
	case NumSleepHours:
		return r.SleepHoursPerNight, nil
	case NumMentalHealth:
		return r.MentalHealthScore, nil
	case NumConflicts:
		return float64(r.ConflictsOverSocialMedia), nil
	case NumAddictedScore:
		return r.AddictedScore, nil
	}
	return 0, &UnknownFieldError{Kind: "numeric", Field: n.String(), Allowed: numericNames}
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
