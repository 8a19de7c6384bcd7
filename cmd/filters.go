package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/views"
)

// filterFlags are the selection and range flags shared by every command
// that works on a filtered view.
type filterFlags struct {
	searchBy string
	value    string
	ageMin   int
	ageMax   int
	minScore float64
	view     string
}

func (f *filterFlags) register(cmd *cobra.Command, withView bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.searchBy, "search-by", "none", "selection field: none|id|country|platform|academic_level|gender")
	fl.StringVar(&f.value, "value", "", "value the selection field must equal")
	fl.IntVar(&f.ageMin, "age-min", 0, "minimum age (inclusive)")
	fl.IntVar(&f.ageMax, "age-max", 0, "maximum age (inclusive)")
	fl.Float64Var(&f.minScore, "min-score", 0, "minimum addiction score (inclusive)")
	if withView {
		fl.StringVar(&f.view, "view", "", "start from a saved view (name or id); explicit flags override it")
	}
}

// spec builds the FilterSpec. Only flags the user actually set are applied,
// so an unset --age-min never narrows the view.
func (f *filterFlags) spec(cmd *cobra.Command) (pipeline.FilterSpec, error) {
	var spec pipeline.FilterSpec
	fl := cmd.Flags()
	if f.view != "" {
		v, err := lookupView(f.view)
		if err != nil {
			return spec, err
		}
		spec = v.Filter
		log.Debug("using saved view", zap.String("view", v.Name), zap.String("filter", v.Filter.Describe()))
	}
	if fl.Changed("search-by") {
		field, err := pipeline.ParseField(f.searchBy)
		if err != nil {
			return spec, fmt.Errorf("--search-by: %w", err)
		}
		spec.SearchBy = field
	}
	if fl.Changed("value") {
		spec.Value = f.value
	}
	if fl.Changed("age-min") {
		v := f.ageMin
		spec.AgeMin = &v
	}
	if fl.Changed("age-max") {
		v := f.ageMax
		spec.AgeMax = &v
	}
	if fl.Changed("min-score") {
		v := f.minScore
		spec.MinScore = &v
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

func openViews() (*views.Store, error) {
	if cfg == nil || cfg.ViewsDir == "" {
		return nil, fmt.Errorf("views_dir is not configured")
	}
	return views.Open(cfg.ViewsDir)
}

func lookupView(ref string) (*views.View, error) {
	store, err := openViews()
	if err != nil {
		return nil, err
	}
	return store.Get(ref)
}
