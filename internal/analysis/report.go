package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// ReportOptions controls report assembly.
type ReportOptions struct {
	// TopCountries limits the country table; 0 keeps every country.
	TopCountries int
	// CorrelationPairs limits the pair list in Markdown; 0 lists all pairs.
	CorrelationPairs int
}

// DefaultReportOptions mirrors the dashboard's presentation defaults.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{TopCountries: 15, CorrelationPairs: 10}
}

// Report gathers every statistic for one filtered view. Insights are always
// computed over the full dataset.
type Report struct {
	Name                 string             `json:"name"`
	Filter               string             `json:"filter"`
	TotalRows            int                `json:"total_rows"`
	Summary              Summary            `json:"summary"`
	Insights             Insights           `json:"insights"`
	Levels               Distribution       `json:"levels"`
	Platforms            Distribution       `json:"platforms"`
	AcademicImpact       Distribution       `json:"academic_impact"`
	ScoreByGender        []GroupMean        `json:"score_by_gender"`
	ScoreByAcademicLevel []GroupMean        `json:"score_by_academic_level"`
	ScoreByPlatform      []GroupDescription `json:"score_by_platform"`
	Correlation          *CorrelationMatrix `json:"correlation"`
	Countries            []CountryAggregate `json:"countries"`
	ScoreStats           Description        `json:"score_stats"`
	UsageStats           Description        `json:"usage_stats"`
	Warnings             []string           `json:"warnings,omitempty"`

	pairs int
}

// BuildReport computes the report for view, a subset of all selected by spec.
func BuildReport(name string, all, view []pipeline.Record, spec pipeline.FilterSpec, opt ReportOptions) (*Report, error) {
	rep := &Report{
		Name:      name,
		Filter:    spec.Describe(),
		TotalRows: len(all),
		Summary:   ComputeSummary(view),
		Insights:  ComputeInsights(all),
		Countries: TopCountries(ComputeCountryAggregates(view), opt.TopCountries),
		pairs:     opt.CorrelationPairs,
	}
	var err error
	if rep.Levels, err = ComputeDistribution(view, pipeline.GroupLevel); err != nil {
		return nil, err
	}
	if rep.Platforms, err = ComputeDistribution(view, pipeline.GroupPlatform); err != nil {
		return nil, err
	}
	if rep.AcademicImpact, err = ComputeDistribution(view, pipeline.GroupAffectsAcademic); err != nil {
		return nil, err
	}
	if rep.ScoreByGender, err = ComputeGroupedMean(view, pipeline.GroupGender, pipeline.NumAddictedScore); err != nil {
		return nil, err
	}
	if rep.ScoreByAcademicLevel, err = ComputeGroupedMean(view, pipeline.GroupAcademicLevel, pipeline.NumAddictedScore); err != nil {
		return nil, err
	}
	if rep.ScoreByPlatform, err = DescribeBy(view, pipeline.NumAddictedScore, pipeline.GroupPlatform); err != nil {
		return nil, err
	}
	if rep.Correlation, err = ComputeCorrelation(view, nil); err != nil {
		return nil, err
	}
	if rep.ScoreStats, err = Describe(view, pipeline.NumAddictedScore); err != nil {
		return nil, err
	}
	if rep.UsageStats, err = Describe(view, pipeline.NumUsageHours); err != nil {
		return nil, err
	}
	if len(view) == 0 {
		rep.Warnings = append(rep.Warnings, "no rows match the current filters")
	} else if len(view) < 2 {
		rep.Warnings = append(rep.Warnings, "fewer than 2 rows: correlations are undefined")
	}
	return rep, nil
}

// Markdown renders the report as plain sectioned text.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d of %d\n", r.Summary.Count, r.TotalRows))
	b.WriteString(fmt.Sprintf("Filter: %s\n", r.Filter))

	b.WriteString("\n[KEY METRICS]\n")
	b.WriteString(fmt.Sprintf("- Total students: %d\n", r.Summary.Count))
	b.WriteString(fmt.Sprintf("- Avg daily usage: %s hrs\n", r.Summary.MeanUsageHours))
	b.WriteString(fmt.Sprintf("- Academic impact: %d (%s%%)\n", r.Summary.AffectedCount, r.Summary.AffectedPercent.Format(1)))
	b.WriteString(fmt.Sprintf("- Avg addiction score: %s/10\n", r.Summary.MeanAddictedScore))

	b.WriteString("\n[KEY INSIGHTS]\n")
	writeIndicators(&b, r.Insights.Severity)
	writeIndicators(&b, r.Insights.Wellbeing)

	writeDistribution(&b, "ADDICTION LEVELS", r.Levels)
	writeDistribution(&b, "PLATFORMS", r.Platforms)
	writeDistribution(&b, "ACADEMIC IMPACT", r.AcademicImpact)

	writeMeans(&b, "MEAN SCORE BY GENDER", r.ScoreByGender)
	writeMeans(&b, "MEAN SCORE BY ACADEMIC LEVEL", r.ScoreByAcademicLevel)

	if len(r.ScoreByPlatform) > 0 {
		b.WriteString("\n[SCORE BY PLATFORM]\n")
		for _, g := range r.ScoreByPlatform {
			b.WriteString(fmt.Sprintf("- %s (n=%d): median %s (q1 %s, q3 %s, min %s, max %s)\n",
				safeVal(g.Group), g.Count, g.P50, g.P25, g.P75, g.Min, g.Max))
		}
	}

	if r.Correlation != nil && len(r.Correlation.Fields) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		pairs := r.Correlation.TopPairs(r.pairs)
		if len(pairs) == 0 {
			b.WriteString("- N/A\n")
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%s\n", p.A, p.B, p.R.Format(3)))
		}
	}

	if len(r.Countries) > 0 {
		b.WriteString("\n[TOP COUNTRIES]\n")
		b.WriteString("| Country | Avg Addiction Score | Students | Avg Usage Hours |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, c := range r.Countries {
			b.WriteString(fmt.Sprintf("| %s | %.2f | %d | %.2f |\n", safeVal(c.Country), c.MeanAddictedScore, c.Students, c.MeanUsageHours))
		}
	}

	b.WriteString("\n[STATISTICS]\n")
	writeDescription(&b, r.ScoreStats)
	writeDescription(&b, r.UsageStats)

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeIndicators(b *strings.Builder, ins []Indicator) {
	for _, in := range ins {
		b.WriteString(fmt.Sprintf("- %s: %d students (%s%%)\n", in.Label, in.Count, in.Percent.Format(1)))
	}
}

func writeDistribution(b *strings.Builder, title string, d Distribution) {
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	if len(d.Counts) == 0 {
		b.WriteString("- N/A\n")
		return
	}
	for _, c := range d.Counts {
		b.WriteString(fmt.Sprintf("- %s: %d (%s%%)\n", safeVal(c.Category), c.Count, c.Percent.Format(1)))
	}
}

func writeMeans(b *strings.Builder, title string, ms []GroupMean) {
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	if len(ms) == 0 {
		b.WriteString("- N/A\n")
		return
	}
	for _, m := range ms {
		b.WriteString(fmt.Sprintf("- %s (n=%d): %s\n", safeVal(m.Group), m.Count, m.Mean))
	}
}

func writeDescription(b *strings.Builder, d Description) {
	b.WriteString(fmt.Sprintf("- %s: count %d, mean %s, std %s, min %s, 25%% %s, 50%% %s, 75%% %s, max %s\n",
		d.Field, d.Count, d.Mean, d.Std, d.Min, d.P25, d.P50, d.P75, d.Max))
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
