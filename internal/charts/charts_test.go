package charts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleView() []pipeline.Record {
	rows := []dataset.Row{
		{StudentID: 1, Gender: "Female", Country: "USA", MostUsedPlatform: "Instagram", AcademicLevel: "Graduate", AvgDailyUsageHours: 5.5, SleepHoursPerNight: 6, MentalHealthScore: 5, AddictedScore: 8, AffectsAcademicPerformance: true},
		{StudentID: 2, Gender: "Male", Country: "India", MostUsedPlatform: "TikTok", AcademicLevel: "Undergraduate", AvgDailyUsageHours: 2, SleepHoursPerNight: 8, MentalHealthScore: 8, AddictedScore: 3},
		{StudentID: 3, Gender: "Female", Country: "UK", MostUsedPlatform: "Instagram", AcademicLevel: "Undergraduate", AvgDailyUsageHours: 4, SleepHoursPerNight: 7, MentalHealthScore: 6, AddictedScore: 6},
	}
	out := make([]pipeline.Record, len(rows))
	for i, r := range rows {
		out[i] = pipeline.Record{Row: r, Level: pipeline.Classify(r.AddictedScore)}
	}
	return out
}

func TestCatalogRendersPNG(t *testing.T) {
	view := sampleView()
	opt := CatalogOptions{Options: Options{Width: 400, Height: 300}, TopCountries: 2}
	for _, f := range Catalog() {
		t.Run(f.Name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Render(&buf, view, opt); err != nil {
				t.Fatalf("render %s: %v", f.Name, err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Fatalf("%s did not produce a PNG", f.Name)
			}
		})
	}
}

func TestSinglePointStillRenders(t *testing.T) {
	var buf bytes.Buffer
	err := Scatter(&buf, "one", sampleView()[:1], pipeline.NumUsageHours, pipeline.NumAddictedScore, nil, Options{})
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("expected PNG output")
	}
}

func TestEmptyViewReportsNoData(t *testing.T) {
	for _, f := range Catalog() {
		var buf bytes.Buffer
		if err := f.Render(&buf, nil, CatalogOptions{}); !errors.Is(err, ErrNoData) {
			t.Fatalf("%s: expected ErrNoData, got %v", f.Name, err)
		}
	}
	if err := Bar(&bytes.Buffer{}, "x", []string{"a"}, []analysis.Metric{analysis.Undefined()}, Options{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("undefined bars should be skipped, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("levels"); !ok {
		t.Fatalf("levels figure missing")
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatalf("unexpected figure")
	}
	if n := Names(); len(n) != len(Catalog()) || n[0] != "academic_impact" {
		t.Fatalf("names = %v", n)
	}
}

func TestCatalogSplits(t *testing.T) {
	tests := []struct {
		figure string
		split  string
	}{
		{"usage_vs_score", pipeline.GroupLevel.Label()},
		{"sleep_vs_mental_health", pipeline.GroupLevel.Label()},
		{"score_histogram", pipeline.GroupGender.Label()},
		{"levels", ""},
	}
	for _, tt := range tests {
		f, ok := Lookup(tt.figure)
		if !ok {
			t.Fatalf("%s missing", tt.figure)
		}
		if f.Split != tt.split {
			t.Fatalf("%s split = %q, want %q", tt.figure, f.Split, tt.split)
		}
	}
}

func TestSplitHistogramRenders(t *testing.T) {
	h, err := analysis.ComputeHistogramBy(sampleView(), pipeline.NumAddictedScore, analysis.DefaultBins, pipeline.GroupGender)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Groups) != 2 {
		t.Fatalf("groups = %+v", h.Groups)
	}
	if got, want := legendText(h.Groups), "(blue: Female, green: Male)"; got != want {
		t.Fatalf("legend = %q, want %q", got, want)
	}
	var buf bytes.Buffer
	if err := Histogram(&buf, "scores", h, Options{Width: 400, Height: 300}); err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("expected PNG output")
	}
}
