package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/socialpulse-cli/internal/charts"
	"github.com/KaramelBytes/socialpulse-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the dataset analyses as a JSON API",
	Long: `Loads the dataset once and serves summaries, distributions, grouped means,
correlations, country rankings, reports, CSV exports and PNG charts under
/api/v1. Every analysis route accepts search_by, value, age_min, age_max,
min_score and view query parameters. Prometheus metrics are on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openDataset(args)
		if err != nil {
			return err
		}
		store, err := openViews()
		if err != nil {
			log.Warn("saved views unavailable", zap.Error(err))
		}

		c := cfg
		opt := server.Options{
			Handle:       h,
			Views:        store,
			Logger:       log,
			Mode:         c.GinMode,
			ListenAddr:   c.ListenAddr,
			ReadTimeout:  time.Duration(c.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(c.WriteTimeoutSec) * time.Second,
			TopCountries: c.TopCountries,
			Chart:        charts.Options{Width: c.ChartWidth, Height: c.ChartHeight},
		}
		if cmd.Flags().Changed("addr") {
			opt.ListenAddr = serveAddr
		}
		if debug {
			opt.Mode = "debug"
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s (Ctrl+C to stop)\n", opt.ListenAddr)
		if err := server.New(opt).Run(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
