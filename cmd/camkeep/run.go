package main

import (
	"fmt"
	"log/slog"
	"os"

	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/retention"

	"github.com/spf13/cobra"
)

var runFlags struct {
	dryRun          bool
	recentGB        float64
	historicalGB    float64
	output          string
	metricsTextfile string
	progress        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply the retention budgets once",
	Long: `Apply the retention budgets to the archive once and print a summary.

The run takes the archive lock; if another run holds it, the run is skipped
and camkeep exits with status 3.

Examples:
  # Run with the budgets from the config file
  camkeep run

  # Show what would be deleted
  camkeep run --dry-run -v

  # Override budgets for this run
  camkeep run --recent-gb 300 --historical-gb 500

  # Machine-readable summary and node_exporter metrics
  camkeep run -o json --metrics-textfile /var/lib/node_exporter/camkeep.prom`,
	RunE: runRetention,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "log decisions without deleting anything")
	runCmd.Flags().Float64Var(&runFlags.recentGB, "recent-gb", 0, "override the recent budget (GB)")
	runCmd.Flags().Float64Var(&runFlags.historicalGB, "historical-gb", 0, "override the historical budget (GB)")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "text", "output format: text, json")
	runCmd.Flags().StringVar(&runFlags.metricsTextfile, "metrics-textfile", "", "write metrics in textfile format to this path")
	runCmd.Flags().BoolVar(&runFlags.progress, "progress", false, "show per-phase progress on stderr")
}

func runRetention(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(runFlags.output)
	if err != nil {
		return err
	}

	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err := applyRunFlags(cmd, loaded)
	if err != nil {
		return err
	}

	tel, err := newTelemetry(&cfg.Telemetry)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer tel.shutdown()

	store := retention.OpenHistory(&cfg.History)
	if store != nil {
		defer store.Close()
	}

	opts := retention.RunnerOptions{
		Metrics: tel.metrics,
		History: store,
		Tracer:  tel.tracer,
	}
	var progress *cli.PhaseProgress
	if runFlags.progress {
		progress = cli.NewPhaseProgress(os.Stderr)
		opts.Progress = progress.Report
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	runner := retention.NewRunner(func() *config.Config { return cfg }, opts)
	summary, runErr := runner.Run(ctx)
	if progress != nil {
		progress.Finish()
	}

	textfile := runFlags.metricsTextfile
	if textfile == "" {
		textfile = cfg.Telemetry.Metrics.TextfilePath
	}
	if textfile != "" && tel.metrics.Enabled() {
		if err := tel.metrics.WriteTextfile(textfile); err != nil {
			slog.Warn("failed to write metrics textfile", "path", textfile, "error", err)
		}
	}

	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.SummaryReport{
		Summary: summary,
		Verbose: verbose,
	})
}

// applyRunFlags returns a copy of cfg with the command-line overrides applied.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	flags := cmd.Flags()

	if flags.Changed("dry-run") {
		out.Retention.DryRun = runFlags.dryRun
	}
	if flags.Changed("recent-gb") {
		if runFlags.recentGB < 0 {
			return nil, cli.NewConfigError("recent-gb", "must be non-negative")
		}
		out.Retention.RecentBudgetGB = runFlags.recentGB
	}
	if flags.Changed("historical-gb") {
		if runFlags.historicalGB < 0 {
			return nil, cli.NewConfigError("historical-gb", "must be non-negative")
		}
		out.Retention.HistoricalBudgetGB = runFlags.historicalGB
	}

	if out.Retention.DryRun {
		fmt.Fprintln(cmd.ErrOrStderr(), "Dry run: nothing will be deleted")
	}
	return &out, nil
}
