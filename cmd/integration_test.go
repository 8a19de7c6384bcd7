package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

const sampleCSV = `Student_ID,Age,Gender,Academic_Level,Country,Avg_Daily_Usage_Hours,Most_Used_Platform,Affects_Academic_Performance,Sleep_Hours_Per_Night,Mental_Health_Score,Relationship_Status,Conflicts_Over_Social_Media,Addicted_Score
1,19,Female,Undergraduate,Bangladesh,5.2,Instagram,Yes,6.5,6,In Relationship,3,8
2,22,Male,Graduate,India,2.1,Twitter,No,7.5,8,Single,0,3
3,20,Female,Undergraduate,USA,6,TikTok,Yes,5,5,Complicated,4,9
4,24,Male,Graduate,USA,3.25,YouTube,No,8,7,Single,1,5
5,18,Female,High School,India,4.5,Instagram,Yes,6,6,Single,2,6
`

// resetFlags restores every flag to its default; cobra keeps values and the
// Changed state between Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its combined output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// setupHome isolates config and views in a temp HOME and writes the sample
// dataset there.
func setupHome(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "students.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return home, csvPath
}

func TestCLI_ReportMarkdownToFile(t *testing.T) {
	home, csvPath := setupHome(t)
	outPath := filepath.Join(home, "out", "report.md")

	out := mustRun(t, "report", csvPath, "--search-by", "gender", "--value", "Female", "-o", outPath)
	if !strings.Contains(out, "✓ Wrote report") {
		t.Fatalf("missing confirmation: %s", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 3 of 5", `gender = "Female"`, "[TOP COUNTRIES]"} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestCLI_ReportJSONAndTable(t *testing.T) {
	_, csvPath := setupHome(t)

	out := mustRun(t, "report", csvPath, "--format", "json", "--age-min", "20", "--top", "1")
	var rep analysis.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode json report: %v\n%s", err, out)
	}
	if rep.Summary.Count != 3 || rep.TotalRows != 5 || len(rep.Countries) != 1 {
		t.Fatalf("json report = %+v", rep.Summary)
	}

	out = mustRun(t, "report", csvPath, "--format", "table")
	for _, want := range []string{"Key metrics", "Top countries", "BANGLADESH"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_RejectsBadFilters(t *testing.T) {
	_, csvPath := setupHome(t)

	_, err := runCmd(t, "report", csvPath, "--search-by", "hometown", "--value", "x")
	var ufe *pipeline.UnknownFieldError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	_, err = runCmd(t, "report", csvPath, "--age-min", "30", "--age-max", "20")
	var ire *pipeline.InvalidRangeError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
	if _, err := runCmd(t, "report", csvPath, "--format", "pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	_, err = runCmd(t, "report", filepath.Join(filepath.Dir(csvPath), "missing.csv"))
	var dse *dataset.DataSourceError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestCLI_ExportRoundTrip(t *testing.T) {
	home, csvPath := setupHome(t)
	outPath := filepath.Join(home, "usa.csv")

	mustRun(t, "export", csvPath, "--search-by", "country", "--value", "USA", "--with-level", "-o", outPath)
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(strings.SplitN(string(b), "\n", 2)[0], dataset.LevelColumn) {
		t.Fatalf("level column missing:\n%s", b)
	}
	ds, err := dataset.Load(outPath, dataset.Options{})
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if ds.Len() != 2 || ds.Row(0).StudentID != 3 || ds.Row(1).AvgDailyUsageHours != 3.25 {
		t.Fatalf("reloaded rows = %+v", ds.Rows())
	}
}

func TestCLI_ViewsLifecycle(t *testing.T) {
	home, csvPath := setupHome(t)

	out := mustRun(t, "views", "save", "india", "--search-by", "country", "--value", "India", "-d", "Indian students")
	if !strings.Contains(out, "✓ Saved view 'india'") {
		t.Fatalf("save output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".socialpulse", "views.json")); err != nil {
		t.Fatalf("views.json not written: %v", err)
	}
	out = mustRun(t, "views", "list")
	if !strings.Contains(out, "india") {
		t.Fatalf("list output: %s", out)
	}
	out = mustRun(t, "views", "show", "india")
	if !strings.Contains(out, `country = "India"`) || !strings.Contains(out, "Indian students") {
		t.Fatalf("show output: %s", out)
	}

	out = mustRun(t, "report", csvPath, "--view", "india", "--format", "json")
	var rep analysis.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rep.Summary.Count != 2 {
		t.Fatalf("view should select 2 rows, got %d", rep.Summary.Count)
	}

	mustRun(t, "views", "delete", "india")
	if _, err := runCmd(t, "report", csvPath, "--view", "india"); err == nil {
		t.Fatalf("expected error for deleted view")
	}
}

func TestCLI_ConfigSetShowAndDatasetPath(t *testing.T) {
	_, csvPath := setupHome(t)

	if _, err := runCmd(t, "report"); err == nil {
		t.Fatalf("expected error without a dataset")
	}
	mustRun(t, "config", "set", "dataset_path", csvPath)
	mustRun(t, "config", "set", "top_countries", "2")
	if _, err := runCmd(t, "config", "set", "log_level", "loud"); err == nil {
		t.Fatalf("expected validation error for log_level")
	}

	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "dataset_path: "+csvPath) || !strings.Contains(out, "top_countries: 2") || !strings.Contains(out, "log_level: info") {
		t.Fatalf("config show: %s", out)
	}

	out = mustRun(t, "report", "--format", "json")
	var rep analysis.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rep.TotalRows != 5 || len(rep.Countries) != 2 {
		t.Fatalf("configured dataset/top not applied: rows=%d countries=%d", rep.TotalRows, len(rep.Countries))
	}
}

func TestCLI_ChartsRendersPNGs(t *testing.T) {
	home, csvPath := setupHome(t)
	outDir := filepath.Join(home, "charts")

	out := mustRun(t, "charts", csvPath, "--out-dir", outDir, "--only", "levels,score_histogram,usage_vs_score", "--width", "400", "--height", "300")
	if !strings.Contains(out, "✓ Rendered 3 chart(s)") {
		t.Fatalf("charts output: %s", out)
	}
	for _, name := range []string{"levels", "score_histogram", "usage_vs_score"} {
		b, err := os.ReadFile(filepath.Join(outDir, name+".png"))
		if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
			t.Fatalf("%s.png not a PNG: %v", name, err)
		}
	}

	out = mustRun(t, "charts", csvPath, "--out-dir", outDir, "--only", "levels", "--min-score", "10")
	if !strings.Contains(out, "⚠ Skipped levels") || !strings.Contains(out, "✓ Rendered 0 chart(s)") {
		t.Fatalf("empty view output: %s", out)
	}
	for _, only := range []string{"levels,levels", "levels, levels,levels"} {
		out = mustRun(t, "charts", csvPath, "--out-dir", outDir, "--only", only)
		if !strings.Contains(out, "✓ Rendered 1 chart(s)") {
			t.Fatalf("--only %s should render once: %s", only, out)
		}
	}
	if _, err := runCmd(t, "charts", csvPath, "--only", "nope"); err == nil {
		t.Fatalf("expected error for unknown chart")
	}
}
