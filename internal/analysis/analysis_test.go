package analysis

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

type rowSpec struct {
	id       int
	country  string
	gender   string
	platform string
	age      int
	usage    float64
	sleep    float64
	mental   float64
	score    float64
	affected bool
}

func records(specs ...rowSpec) []pipeline.Record {
	out := make([]pipeline.Record, len(specs))
	for i, s := range specs {
		r := dataset.Row{
			StudentID: s.id, Country: s.country, Gender: s.gender, MostUsedPlatform: s.platform,
			AcademicLevel: "Undergraduate", Age: s.age, AvgDailyUsageHours: s.usage,
			SleepHoursPerNight: s.sleep, MentalHealthScore: s.mental, AddictedScore: s.score,
			AffectsAcademicPerformance: s.affected,
		}
		out[i] = pipeline.Record{Row: r, Level: pipeline.Classify(s.score)}
	}
	return out
}

var fixture = records(
	rowSpec{1, "USA", "Female", "Instagram", 20, 6, 5, 5, 8, true},
	rowSpec{2, "USA", "Male", "TikTok", 17, 2, 8, 8, 2, false},
	rowSpec{3, "India", "Female", "Instagram", 21, 4, 7, 6, 5, true},
	rowSpec{4, "UK", "Male", "YouTube", 23, 3, 6.5, 7, 5, false},
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeSummaryScenario(t *testing.T) {
	view, err := pipeline.ApplyRangeFilters(fixture[:2], 18, 25, 0)
	if err != nil {
		t.Fatalf("ApplyRangeFilters: %v", err)
	}
	s := ComputeSummary(view)
	if s.Count != 1 || s.MeanAddictedScore.Float() != 8 {
		t.Fatalf("summary = %+v", s)
	}
	if s.AffectedCount != 1 || s.AffectedPercent.Float() != 100 {
		t.Fatalf("affected = %d (%v)", s.AffectedCount, s.AffectedPercent)
	}
}

func TestComputeSummaryEmptyIsUndefined(t *testing.T) {
	s := ComputeSummary(nil)
	if s.Count != 0 || s.AffectedCount != 0 {
		t.Fatalf("counts = %+v", s)
	}
	for name, m := range map[string]Metric{"usage": s.MeanUsageHours, "percent": s.AffectedPercent, "score": s.MeanAddictedScore} {
		if m.Defined() {
			t.Fatalf("%s should be undefined, got %v", name, m.Float())
		}
		if m.String() != "N/A" {
			t.Fatalf("%s renders %q", name, m.String())
		}
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"mean_addicted_score":null`) {
		t.Fatalf("undefined metric not encoded as null: %s", b)
	}
}

func TestMetricJSON(t *testing.T) {
	var m Metric
	if err := json.Unmarshal([]byte("null"), &m); err != nil || m.Defined() {
		t.Fatalf("null -> %v, %v", m, err)
	}
	if err := json.Unmarshal([]byte("2.5"), &m); err != nil || m.Float() != 2.5 {
		t.Fatalf("2.5 -> %v, %v", m, err)
	}
	b, _ := json.Marshal(Metric(1.25))
	if string(b) != "1.25" {
		t.Fatalf("marshal = %s", b)
	}
}

func TestComputeDistributionLevels(t *testing.T) {
	view := records(
		rowSpec{id: 1, score: 2},
		rowSpec{id: 2, score: 5},
		rowSpec{id: 3, score: 9},
	)
	d, err := ComputeDistribution(view, pipeline.GroupLevel)
	if err != nil {
		t.Fatalf("ComputeDistribution: %v", err)
	}
	want := map[string]int{"Low": 1, "Moderate": 1, "Severe": 1}
	if !reflect.DeepEqual(d.Map(), want) {
		t.Fatalf("distribution = %v", d.Map())
	}
	if d.Total != 3 || d.Counts[0].Category != "Low" || d.Counts[2].Category != "Severe" {
		t.Fatalf("unexpected order %+v", d.Counts)
	}
}

func TestComputeDistributionIsSortedByKey(t *testing.T) {
	d, err := ComputeDistribution(fixture, pipeline.GroupPlatform)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, c := range d.Counts {
		keys = append(keys, c.Category)
	}
	if !reflect.DeepEqual(keys, []string{"Instagram", "TikTok", "YouTube"}) {
		t.Fatalf("keys = %v", keys)
	}
	if d.Counts[0].Count != 2 || d.Counts[0].Percent.Float() != 50 {
		t.Fatalf("instagram = %+v", d.Counts[0])
	}
	aff, _ := ComputeDistribution(fixture, pipeline.GroupAffectsAcademic)
	if !reflect.DeepEqual(aff.Map(), map[string]int{"No": 2, "Yes": 2}) {
		t.Fatalf("affects = %v", aff.Map())
	}
}

func TestComputeGroupedMeanOneRowPerGroup(t *testing.T) {
	view := records(
		rowSpec{id: 1, country: "USA", score: 8},
		rowSpec{id: 2, country: "India", score: 3.5},
		rowSpec{id: 3, country: "UK", score: 6},
	)
	got, err := ComputeGroupedMean(view, pipeline.GroupCountry, pipeline.NumAddictedScore)
	if err != nil {
		t.Fatalf("ComputeGroupedMean: %v", err)
	}
	want := []GroupMean{{"India", 1, 3.5}, {"UK", 1, 6}, {"USA", 1, 8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	empty, err := ComputeGroupedMean(nil, pipeline.GroupGender, pipeline.NumAge)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty view: %v %v", empty, err)
	}
}

func TestComputeGroupedMeanAverages(t *testing.T) {
	got, err := ComputeGroupedMean(fixture, pipeline.GroupGender, pipeline.NumAddictedScore)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Group != "Female" || got[0].Mean.Float() != 6.5 || got[1].Mean.Float() != 3.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestComputeCorrelation(t *testing.T) {
	view := records(
		rowSpec{id: 1, age: 18, usage: 1, sleep: 9, score: 2},
		rowSpec{id: 2, age: 18, usage: 2, sleep: 8, score: 4},
		rowSpec{id: 3, age: 18, usage: 3, sleep: 7, score: 6},
	)
	fields := []pipeline.NumericField{pipeline.NumUsageHours, pipeline.NumSleepHours, pipeline.NumAddictedScore, pipeline.NumAge}
	m, err := ComputeCorrelation(view, fields)
	if err != nil {
		t.Fatalf("ComputeCorrelation: %v", err)
	}
	if len(m.Fields) != 4 || m.Fields[0] != dataset.ColUsageHours {
		t.Fatalf("fields = %v", m.Fields)
	}
	if r := m.Values[0][2]; !approx(r.Float(), 1) {
		t.Fatalf("usage~score = %v", r)
	}
	if r := m.Values[0][1]; !approx(r.Float(), -1) {
		t.Fatalf("usage~sleep = %v", r)
	}
	if m.Values[0][0].Float() != 1 {
		t.Fatalf("diagonal = %v", m.Values[0][0])
	}
	// age is constant
	for i := range fields {
		if m.Values[3][i].Defined() || m.Values[i][3].Defined() {
			t.Fatalf("constant column should be undefined at %d", i)
		}
	}
	if r, ok := m.At(dataset.ColAddictedScore, dataset.ColUsageHours); !ok || !approx(r.Float(), 1) {
		t.Fatalf("At = %v %v", r, ok)
	}
	pairs := m.TopPairs(0)
	if len(pairs) != 3 {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestComputeCorrelationTooFewRows(t *testing.T) {
	m, err := ComputeCorrelation(fixture[:1], nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Fields) != len(pipeline.NumericFields) {
		t.Fatalf("default fields = %v", m.Fields)
	}
	for i := range m.Values {
		for j := range m.Values[i] {
			if m.Values[i][j].Defined() {
				t.Fatalf("value [%d][%d] defined with one row", i, j)
			}
		}
	}
}

func TestComputeCountryAggregates(t *testing.T) {
	view := records(
		rowSpec{id: 1, country: "USA", usage: 4, score: 8},
		rowSpec{id: 2, country: "USA", usage: 3, score: 3},
		rowSpec{id: 3, country: "Spain", usage: 5, score: 5.5},
		rowSpec{id: 4, country: "India", usage: 1.111, score: 7},
		rowSpec{id: 5, country: "Chile", usage: 2, score: 5.5},
	)
	got := ComputeCountryAggregates(view)
	var order []string
	for _, c := range got {
		order = append(order, c.Country)
	}
	if !reflect.DeepEqual(order, []string{"India", "Chile", "Spain", "USA"}) {
		t.Fatalf("order = %v", order)
	}
	if got[0].MeanUsageHours != 1.11 || got[3].Students != 2 || got[3].MeanAddictedScore != 5.5 {
		t.Fatalf("aggregates = %+v", got)
	}
	top := TopCountries(got, 2)
	if len(top) != 2 || top[1].Country != "Chile" {
		t.Fatalf("top = %+v", top)
	}
	if len(TopCountries(got, 0)) != 4 {
		t.Fatalf("n=0 should keep all")
	}
}

func TestDescribe(t *testing.T) {
	d, err := Describe(fixture, pipeline.NumAddictedScore)
	if err != nil {
		t.Fatal(err)
	}
	// scores 8 2 5 5
	if d.Count != 4 || d.Mean.Float() != 5 || d.Min.Float() != 2 || d.Max.Float() != 8 || d.P50.Float() != 5 {
		t.Fatalf("describe = %+v", d)
	}
	if !approx(d.P25.Float(), 4.25) || !approx(d.P75.Float(), 5.75) {
		t.Fatalf("quartiles = %v %v", d.P25, d.P75)
	}
	if !approx(d.Std.Float(), math.Sqrt(6)) {
		t.Fatalf("std = %v", d.Std)
	}
	one, _ := Describe(fixture[:1], pipeline.NumAge)
	if one.Std.Defined() || one.Mean.Float() != 20 {
		t.Fatalf("single row = %+v", one)
	}
	empty, _ := Describe(nil, pipeline.NumAge)
	if empty.Mean.Defined() || empty.Max.Defined() {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestComputeHistogram(t *testing.T) {
	h, err := ComputeHistogramBy(fixture, pipeline.NumAddictedScore, 3, pipeline.GroupGender)
	if err != nil {
		t.Fatal(err)
	}
	// range 2..8, width 2: [2,4) [4,6) [6,8]
	if !reflect.DeepEqual(h.Counts, []int{1, 2, 1}) {
		t.Fatalf("counts = %v edges = %v", h.Counts, h.Edges)
	}
	if len(h.Edges) != 4 || h.Edges[0] != 2 || h.Edges[3] != 8 {
		t.Fatalf("edges = %v", h.Edges)
	}
	if len(h.Groups) != 2 || h.Groups[0].Group != "Female" || !reflect.DeepEqual(h.Groups[0].Counts, []int{0, 1, 1}) {
		t.Fatalf("groups = %+v", h.Groups)
	}
	flat, _ := ComputeHistogram(records(rowSpec{id: 1, score: 4}), pipeline.NumAddictedScore, 0)
	if len(flat.Counts) != DefaultBins {
		t.Fatalf("default bins = %d", len(flat.Counts))
	}
	empty, _ := ComputeHistogram(nil, pipeline.NumAddictedScore, 5)
	if len(empty.Counts) != 0 {
		t.Fatalf("empty histogram = %+v", empty)
	}
}

func TestComputeInsights(t *testing.T) {
	in := ComputeInsights(fixture)
	if in.Total != 4 {
		t.Fatalf("total = %d", in.Total)
	}
	if in.Severity[0].Label != "Severe" || in.Severity[0].Count != 1 || in.Severity[1].Count != 2 || in.Severity[2].Count != 1 {
		t.Fatalf("severity = %+v", in.Severity)
	}
	// usage>5: 1; sleep<6: 1; mental<6: 1
	for _, w := range in.Wellbeing {
		if w.Count != 1 || w.Percent.Float() != 25 {
			t.Fatalf("wellbeing = %+v", in.Wellbeing)
		}
	}
	if ComputeInsights(nil).Severity[0].Percent.Defined() {
		t.Fatalf("empty insights percentage should be undefined")
	}
}

func TestBuildReportMarkdown(t *testing.T) {
	spec := pipeline.FilterSpec{SearchBy: pipeline.FieldCountry, Value: "USA"}
	view, err := spec.Apply(fixture)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := BuildReport("students.csv", fixture, view, spec, DefaultReportOptions())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: students.csv", "Rows: 2 of 4", `Filter: country = "USA"`,
		"[KEY METRICS]", "Avg addiction score: 5.00/10", "Academic impact: 1 (50.0%)",
		"[KEY INSIGHTS]", "Severe: 1 students (25.0%)",
		"[ADDICTION LEVELS]", "- Low: 1 (50.0%)",
		"[MEAN SCORE BY GENDER]", "- Female (n=1): 8.00",
		"[CORRELATIONS]", "[TOP COUNTRIES]", "| USA | 5.00 | 2 | 4.00 |",
		"[STATISTICS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("unexpected notes:\n%s", md)
	}
}

func TestBuildReportEmptyView(t *testing.T) {
	rep, err := BuildReport("x.csv", fixture, nil, pipeline.FilterSpec{}, ReportOptions{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	md := rep.Markdown()
	for _, want := range []string{"Avg daily usage: N/A hrs", "Academic impact: 0 (N/A%)", "[NOTES]", "no rows match"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if _, err := json.Marshal(rep); err != nil {
		t.Fatalf("report must marshal with undefined metrics: %v", err)
	}
}
