package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source column names for the student social-media dataset.
const (
	ColStudentID       = "Student_ID"
	ColAge             = "Age"
	ColGender          = "Gender"
	ColAcademicLevel   = "Academic_Level"
	ColCountry         = "Country"
	ColUsageHours      = "Avg_Daily_Usage_Hours"
	ColPlatform        = "Most_Used_Platform"
	ColAffectsAcademic = "Affects_Academic_Performance"
	ColSleepHours      = "Sleep_Hours_Per_Night"
	ColMentalHealth    = "Mental_Health_Score"
	ColConflicts       = "Conflicts_Over_Social_Media"
	ColAddictedScore   = "Addicted_Score"

	// LevelColumn is the derived severity label. It is never read back as data.
	LevelColumn = "Addiction_Level"
)

// Row is one student record. Rows are values: copying a Row never shares
// mutable state with the dataset it came from, except the read-only Extra slice.
type Row struct {
	StudentID                  int     `json:"student_id"`
	Age                        int     `json:"age"`
	Gender                     string  `json:"gender"`
	AcademicLevel              string  `json:"academic_level"`
	Country                    string  `json:"country"`
	AvgDailyUsageHours         float64 `json:"avg_daily_usage_hours"`
	MostUsedPlatform           string  `json:"most_used_platform"`
	AffectsAcademicPerformance bool    `json:"affects_academic_performance"`
	SleepHoursPerNight         float64 `json:"sleep_hours_per_night"`
	MentalHealthScore          float64 `json:"mental_health_score"`
	ConflictsOverSocialMedia   int     `json:"conflicts_over_social_media"`
	AddictedScore              float64 `json:"addicted_score"`

	// Extra holds pass-through columns in schema order (e.g. Relationship_Status).
	Extra []string `json:"extra,omitempty"`
}

// column binds a required source column to a typed field of Row.
type column struct {
	name   string
	parse  func(r *Row, v string) error
	format func(r Row) string
}

var columns = []column{
	{ColStudentID, func(r *Row, v string) (err error) { r.StudentID, err = ParseInt(v); return }, func(r Row) string { return strconv.Itoa(r.StudentID) }},
	{ColAge, func(r *Row, v string) (err error) { r.Age, err = ParseInt(v); return }, func(r Row) string { return strconv.Itoa(r.Age) }},
	{ColGender, func(r *Row, v string) error { r.Gender = v; return nil }, func(r Row) string { return r.Gender }},
	{ColAcademicLevel, func(r *Row, v string) error { r.AcademicLevel = v; return nil }, func(r Row) string { return r.AcademicLevel }},
	{ColCountry, func(r *Row, v string) error { r.Country = v; return nil }, func(r Row) string { return r.Country }},
	{ColUsageHours, func(r *Row, v string) (err error) { r.AvgDailyUsageHours, err = parseFloat(v); return }, func(r Row) string { return formatFloat(r.AvgDailyUsageHours) }},
	{ColPlatform, func(r *Row, v string) error { r.MostUsedPlatform = v; return nil }, func(r Row) string { return r.MostUsedPlatform }},
	{ColAffectsAcademic, func(r *Row, v string) (err error) { r.AffectsAcademicPerformance, err = parseYesNo(v); return }, func(r Row) string { return formatYesNo(r.AffectsAcademicPerformance) }},
	{ColSleepHours, func(r *Row, v string) (err error) { r.SleepHoursPerNight, err = parseFloat(v); return }, func(r Row) string { return formatFloat(r.SleepHoursPerNight) }},
	{ColMentalHealth, func(r *Row, v string) (err error) { r.MentalHealthScore, err = parseFloat(v); return }, func(r Row) string { return formatFloat(r.MentalHealthScore) }},
	{ColConflicts, func(r *Row, v string) (err error) { r.ConflictsOverSocialMedia, err = ParseInt(v); return }, func(r Row) string { return strconv.Itoa(r.ConflictsOverSocialMedia) }},
	{ColAddictedScore, func(r *Row, v string) (err error) { r.AddictedScore, err = parseFloat(v); return }, func(r Row) string { return formatFloat(r.AddictedScore) }},
}

// RequiredColumns lists the columns every source must provide, in canonical order.
func RequiredColumns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// ParseInt reads an integer cell. Whole-valued floats such as "20.0", as
// written by spreadsheet tools, are accepted when they fit in an int64.
func ParseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return f, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("not yes/no: %q", s)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
