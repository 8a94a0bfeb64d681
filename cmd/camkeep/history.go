package main

import (
	"context"

	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/history"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit  int
	output string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Show the most recent runs recorded in the run history store, newest first.

Examples:
  camkeep history
  camkeep history --limit 50 -o json
  camkeep history --limit 0 -o csv > runs.csv`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return cli.NewConfigError("history.enabled", "run history is disabled")
	}

	store, err := history.Open(history.Config{
		Driver:      cfg.History.Driver,
		Path:        cfg.History.Path,
		BusyTimeout: cfg.History.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	runs, err := store.List(context.Background(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.HistoryReport{Runs: runs})
}
