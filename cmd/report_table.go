package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
)

var sectionTitle = color.New(color.FgCyan, color.Bold)

// renderTable prints the report as terminal tables, one per section.
func renderTable(w io.Writer, rep *analysis.Report) error {
	section := func(title string) {
		fmt.Fprintln(w)
		sectionTitle.Fprintln(w, title)
	}
	newTable := func(header ...string) *tablewriter.Table {
		t := tablewriter.NewWriter(w)
		t.SetHeader(header)
		t.SetAutoWrapText(false)
		return t
	}

	sectionTitle.Fprintln(w, "Dataset summary")
	fmt.Fprintf(w, "File: %s\nRows: %d of %d\nFilter: %s\n", rep.Name, rep.Summary.Count, rep.TotalRows, rep.Filter)

	section("Key metrics")
	t := newTable("Metric", "Value")
	t.Append([]string{"Total students", strconv.Itoa(rep.Summary.Count)})
	t.Append([]string{"Avg daily usage (hrs)", rep.Summary.MeanUsageHours.String()})
	t.Append([]string{"Academic impact", fmt.Sprintf("%d (%s%%)", rep.Summary.AffectedCount, rep.Summary.AffectedPercent.Format(1))})
	t.Append([]string{"Avg addiction score", rep.Summary.MeanAddictedScore.String()})
	t.Render()

	section("Key insights (whole dataset)")
	t = newTable("Indicator", "Students", "Percent")
	for _, in := range append(append([]analysis.Indicator(nil), rep.Insights.Severity...), rep.Insights.Wellbeing...) {
		t.Append([]string{in.Label, strconv.Itoa(in.Count), in.Percent.Format(1) + "%"})
	}
	t.Render()

	for _, d := range []struct {
		title string
		dist  analysis.Distribution
	}{
		{"Addiction levels", rep.Levels},
		{"Platforms", rep.Platforms},
		{"Academic impact", rep.AcademicImpact},
	} {
		section(d.title)
		t = newTable(d.dist.Field, "Count", "Percent")
		for _, c := range d.dist.Counts {
			t.Append([]string{c.Category, strconv.Itoa(c.Count), c.Percent.Format(1) + "%"})
		}
		t.Render()
	}

	for _, m := range []struct {
		title string
		means []analysis.GroupMean
	}{
		{"Mean score by gender", rep.ScoreByGender},
		{"Mean score by academic level", rep.ScoreByAcademicLevel},
	} {
		section(m.title)
		t = newTable("Group", "Students", "Mean")
		for _, g := range m.means {
			t.Append([]string{g.Group, strconv.Itoa(g.Count), g.Mean.String()})
		}
		t.Render()
	}

	if rep.Correlation != nil {
		section("Strongest correlations")
		t = newTable("Field A", "Field B", "r")
		for _, p := range rep.Correlation.TopPairs(repPairs) {
			t.Append([]string{p.A, p.B, p.R.Format(3)})
		}
		t.Render()
	}

	section("Top countries")
	t = newTable("Country", "Avg Addiction Score", "Students", "Avg Usage Hours")
	for _, c := range rep.Countries {
		t.Append([]string{c.Country, strconv.FormatFloat(c.MeanAddictedScore, 'f', 2, 64), strconv.Itoa(c.Students), strconv.FormatFloat(c.MeanUsageHours, 'f', 2, 64)})
	}
	t.Render()

	section("Statistics")
	t = newTable("Field", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max")
	for _, d := range []analysis.Description{rep.ScoreStats, rep.UsageStats} {
		t.Append([]string{d.Field, strconv.Itoa(d.Count), d.Mean.String(), d.Std.String(), d.Min.String(), d.P25.String(), d.P50.String(), d.P75.String(), d.Max.String()})
	}
	t.Render()

	for _, warn := range rep.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn)
	}
	return nil
}
