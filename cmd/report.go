package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/utils"
)

var (
	repFilters    filterFlags
	repFormat     string
	repTop        int
	repPairs      int
	repOutputPath string
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Summarize a filtered view of the dataset",
	Long: `Computes headline metrics, addiction levels, platform and academic impact
distributions, grouped means, correlations, top countries and descriptive
statistics for the rows matching the filter flags. Insights are always
computed over the whole dataset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(repFormat)
		switch format {
		case "markdown", "md", "table", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|table|json)", repFormat)
		}
		spec, err := repFilters.spec(cmd)
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

		opt := analysis.DefaultReportOptions()
		if cfg != nil {
			opt.TopCountries = cfg.TopCountries
		}
		if cmd.Flags().Changed("top") {
			opt.TopCountries = repTop
		}
		opt.CorrelationPairs = repPairs
		rep, err := analysis.BuildReport(data.Name(), data.Records(), view, spec, opt)
		if err != nil {
			return err
		}
		log.Debug("report built", zap.String("filter", rep.Filter), zap.Int("rows", len(view)))

		out, closeOut, err := utils.CreateOutput(repOutputPath)
		if err != nil {
			return err
		}
		var w io.Writer = out
		if repOutputPath == "" || repOutputPath == "-" {
			w = cmd.OutOrStdout()
		}
		switch format {
		case "json":
			b, jerr := utils.PrettyJSON(rep)
			if jerr != nil {
				err = jerr
				break
			}
			_, err = fmt.Fprintln(w, string(b))
		case "table":
			err = renderTable(w, rep)
		default:
			_, err = io.WriteString(w, rep.Markdown())
		}
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if repOutputPath != "" && repOutputPath != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", repOutputPath)
		}
		if len(view) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ No rows match the filter; statistics are N/A.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	repFilters.register(reportCmd, true)
	reportCmd.Flags().StringVar(&repFormat, "format", "markdown", "output format: markdown|table|json")
	reportCmd.Flags().IntVar(&repTop, "top", 15, "number of countries to list (0 = all)")
	reportCmd.Flags().IntVar(&repPairs, "pairs", 10, "number of correlation pairs to list (0 = all)")
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "write the report to this file instead of stdout")
}
