package analysis

import "github.com/KaramelBytes/socialpulse-cli/internal/pipeline"

// Thresholds for the wellbeing indicators.
const (
	HighUsageHours     = 5.0
	PoorSleepHours     = 6.0
	LowMentalHealthMax = 6.0
)

// Indicator counts the rows meeting one condition.
type Indicator struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent Metric `json:"percent"`
}

// Insights are the headline severity and wellbeing counts, usually computed
// over the whole dataset rather than a filtered view.
type Insights struct {
	Total     int         `json:"total"`
	Severity  []Indicator `json:"severity"`
	Wellbeing []Indicator `json:"wellbeing"`
}

// ComputeInsights counts severity levels (most severe first) and the
// high-usage, poor-sleep and low-mental-health groups.
func ComputeInsights(recs []pipeline.Record) Insights {
	levels := map[pipeline.AddictionLevel]int{}
	var high, sleep, mental int
	for _, r := range recs {
		levels[r.Level]++
		if r.AvgDailyUsageHours > HighUsageHours {
			high++
		}
		if r.SleepHoursPerNight < PoorSleepHours {
			sleep++
		}
		if r.MentalHealthScore < LowMentalHealthMax {
			mental++
		}
	}
	n := len(recs)
	in := Insights{Total: n}
	for i := len(pipeline.Levels) - 1; i >= 0; i-- {
		l := pipeline.Levels[i]
		in.Severity = append(in.Severity, Indicator{Label: string(l), Count: levels[l], Percent: percent(levels[l], n)})
	}
	in.Wellbeing = []Indicator{
		{Label: "High usage (>5 hrs/day)", Count: high, Percent: percent(high, n)},
		{Label: "Poor sleep (<6 hrs)", Count: sleep, Percent: percent(sleep, n)},
		{Label: "Low mental health (<6)", Count: mental, Percent: percent(mental, n)},
	}
	return in
}
