package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/socialpulse-cli/internal/config"
	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
	"github.com/KaramelBytes/socialpulse-cli/internal/logger"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
	"github.com/KaramelBytes/socialpulse-cli/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics logger; user-facing output goes to stdout with fmt.
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "socialpulse",
	Short: "Analyze the students' social media addiction dataset",
	Long: `socialpulse loads the student social media survey, labels every row with an
addiction level, and produces filtered summaries, reports, charts, CSV exports
and a JSON API over the same data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.socialpulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
		if dir, derr := cfgpkg.Dir(); derr == nil {
			c.ViewsDir = dir
		}
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logger.New(logger.Options{
		Level:      level,
		File:       utils.ExpandHome(cfg.LogFile),
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Console:    os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to init logger: %v\n", err)
		return
	}
	log = l
	log.Debug("config loaded", zap.String("config", cfgFile), zap.String("dataset_path", cfg.DatasetPath))
}

// datasetPath picks the positional file argument, falling back to the
// configured dataset_path.
func datasetPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return utils.ExpandHome(args[0]), nil
	}
	if cfg != nil && cfg.DatasetPath != "" {
		return utils.ExpandHome(cfg.DatasetPath), nil
	}
	return "", errors.New("no dataset: pass a CSV file or set dataset_path (socialpulse config set dataset_path <file>)")
}

// openDataset builds the load-once handle for the chosen file.
func openDataset(args []string) (*pipeline.Handle, error) {
	path, err := datasetPath(args)
	if err != nil {
		return nil, err
	}
	var opt dataset.Options
	if cfg != nil {
		opt.Delimiter = cfg.DelimiterRune()
	}
	log.Debug("dataset selected", zap.String("path", path), zap.String("delimiter", string(opt.Delimiter)))
	return pipeline.NewHandle(path, opt), nil
}

// loadDataset opens and immediately loads the dataset.
func loadDataset(args []string) (*pipeline.LabeledDataset, error) {
	h, err := openDataset(args)
	if err != nil {
		return nil, err
	}
	data, err := h.Get()
	if err != nil {
		return nil, err
	}
	log.Debug("dataset loaded", zap.String("name", data.Name()), zap.Int("rows", data.Len()))
	return data, nil
}
