package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/socialpulse-cli/internal/charts"
	"github.com/KaramelBytes/socialpulse-cli/internal/utils"
)

var (
	chFilters filterFlags
	chOutDir  string
	chOnly    []string
	chWidth   int
	chHeight  int
	chTop     int
)

var chartsCmd = &cobra.Command{
	Use:   "charts [file]",
	Short: "Render dashboard charts as PNG files",
	Long: `Renders the dashboard figures for the filtered view into --out-dir, one PNG
per figure. Figures with nothing to plot are skipped with a warning.

Available figures: ` + strings.Join(charts.Names(), ", "),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		figs := charts.Catalog()
		if len(chOnly) > 0 {
			figs = figs[:0]
			seen := map[string]bool{}
			for _, name := range chOnly {
				f, ok := charts.Lookup(strings.TrimSpace(name))
				if !ok {
					return fmt.Errorf("unknown chart %q (use one of: %s)", name, strings.Join(charts.Names(), ", "))
				}
				// each figure owns one output file, so a repeated name renders once
				if seen[f.Name] {
					continue
				}
				seen[f.Name] = true
				figs = append(figs, f)
			}
		}
		spec, err := chFilters.spec(cmd)
		if err != nil {
			return err
		}
		data, err := loadDataset(args)
		if err != nil {
			return err
		}
		view, err := data.View(spec)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(chOutDir); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}

		opt := charts.CatalogOptions{Options: charts.Options{Width: chWidth, Height: chHeight}}
		if cfg != nil {
			opt.TopCountries = cfg.TopCountries
			if !cmd.Flags().Changed("width") {
				opt.Width = cfg.ChartWidth
			}
			if !cmd.Flags().Changed("height") {
				opt.Height = cfg.ChartHeight
			}
		}
		if cmd.Flags().Changed("top") {
			opt.TopCountries = chTop
		}

		// The view is read-only, so figures render in parallel.
		var (
			mu      sync.Mutex
			written []string
			skipped []string
		)
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())
		for _, f := range figs {
			f := f
			g.Go(func() error {
				path := filepath.Join(chOutDir, f.Name+".png")
				out, closeOut, err := utils.CreateOutput(path)
				if err != nil {
					return err
				}
				err = f.Render(out, view, opt)
				if cerr := closeOut(); err == nil {
					err = cerr
				}
				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, charts.ErrNoData):
					_ = os.Remove(path)
					skipped = append(skipped, f.Name)
					return nil
				case err != nil:
					return fmt.Errorf("render %s: %w", f.Name, err)
				}
				log.Debug("chart rendered", zap.String("figure", f.Name), zap.String("path", path))
				written = append(written, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		sort.Strings(skipped)
		for _, name := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %s: no data to plot\n", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Rendered %d chart(s) for %d rows into %s\n", len(written), len(view), chOutDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chFilters.register(chartsCmd, true)
	chartsCmd.Flags().StringVar(&chOutDir, "out-dir", "charts", "directory for the PNG files")
	chartsCmd.Flags().StringSliceVar(&chOnly, "only", nil, "comma-separated figure names to render (default all)")
	chartsCmd.Flags().IntVar(&chWidth, "width", 800, "image width in pixels")
	chartsCmd.Flags().IntVar(&chHeight, "height", 500, "image height in pixels")
	chartsCmd.Flags().IntVar(&chTop, "top", 15, "countries shown in top_countries")
}
