package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/utils"
)

var (
	expFilters    filterFlags
	expOutputPath string
	expWithLevel  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the filtered rows back out as CSV",
	Long: `Writes the rows matching the filter flags in the source column order, so the
result loads again like the original. --with-level appends the derived
Addiction_Level column, which is ignored when the file is read back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := expFilters.spec(cmd)
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

		out, closeOut, err := utils.CreateOutput(expOutputPath)
		if err != nil {
			return err
		}
		opt := pipeline.ExportOptions{IncludeLevel: expWithLevel}
		if cfg != nil {
			opt.Delimiter = cfg.DelimiterRune()
		}
		err = pipeline.Export(out, data.Schema(), view, opt)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		if expOutputPath != "" && expOutputPath != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d of %d rows to %s\n", len(view), data.Len(), expOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	expFilters.register(exportCmd, true)
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output CSV path (default stdout)")
	exportCmd.Flags().BoolVar(&expWithLevel, "with-level", false, "append the derived Addiction_Level column")
}
