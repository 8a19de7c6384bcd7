package charts

import (
	"io"
	"sort"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// Figure is a named chart rendered from a filtered view.
type Figure struct {
	Name   string
	Title  string
	// Split names the column the figure is broken down by, if any.
	Split  string
	render func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error
}

// CatalogOptions adds per-figure settings to the canvas size.
type CatalogOptions struct {
	Options
	TopCountries int
}

// Render draws f for view.
func (f Figure) Render(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
	return f.render(w, view, opt)
}

func distributionFigure(name, title string, g pipeline.GroupField) Figure {
	return Figure{Name: name, Title: title, render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		d, err := analysis.ComputeDistribution(view, g)
		if err != nil {
			return err
		}
		return Pie(w, title, d, opt.Options)
	}}
}

func meanFigure(name, title string, g pipeline.GroupField) Figure {
	return Figure{Name: name, Title: title, render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		ms, err := analysis.ComputeGroupedMean(view, g, pipeline.NumAddictedScore)
		if err != nil {
			return err
		}
		return GroupMeans(w, title, ms, opt.Options)
	}}
}

var level = pipeline.GroupLevel

var catalog = []Figure{
	distributionFigure("levels", "Addiction Level Distribution", pipeline.GroupLevel),
	distributionFigure("platforms", "Most Used Platforms", pipeline.GroupPlatform),
	distributionFigure("academic_impact", "Affects Academic Performance", pipeline.GroupAffectsAcademic),
	meanFigure("score_by_gender", "Average Addiction Score by Gender", pipeline.GroupGender),
	meanFigure("score_by_academic_level", "Average Addiction Score by Academic Level", pipeline.GroupAcademicLevel),
	{Name: "top_countries", Title: "Top Countries by Addiction Score", render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		aggs := analysis.TopCountries(analysis.ComputeCountryAggregates(view), opt.TopCountries)
		return Countries(w, "Top Countries by Addiction Score", aggs, opt.Options)
	}},
	{Name: "usage_vs_score", Title: "Daily Usage vs Addiction Score", Split: level.Label(), render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		return Scatter(w, "Daily Usage vs Addiction Score", view, pipeline.NumUsageHours, pipeline.NumAddictedScore, &level, opt.Options)
	}},
	{Name: "sleep_vs_mental_health", Title: "Sleep vs Mental Health", Split: level.Label(), render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		return Scatter(w, "Sleep vs Mental Health", view, pipeline.NumSleepHours, pipeline.NumMentalHealth, &level, opt.Options)
	}},
	{Name: "score_histogram", Title: "Distribution of Addiction Scores", Split: pipeline.GroupGender.Label(), render: func(w io.Writer, view []pipeline.Record, opt CatalogOptions) error {
		h, err := analysis.ComputeHistogramBy(view, pipeline.NumAddictedScore, analysis.DefaultBins, pipeline.GroupGender)
		if err != nil {
			return err
		}
		return Histogram(w, "Distribution of Addiction Scores", h, opt.Options)
	}},
}

// Catalog lists every named figure in presentation order.
func Catalog() []Figure { return append([]Figure(nil), catalog...) }

// Lookup finds a figure by name.
func Lookup(name string) (Figure, bool) {
	for _, f := range catalog {
		if f.Name == name {
			return f, true
		}
	}
	return Figure{}, false
}

// Names returns the figure names sorted alphabetically.
func Names() []string {
	out := make([]string, len(catalog))
	for i, f := range catalog {
		out[i] = f.Name
	}
	sort.Strings(out)
	return out
}
