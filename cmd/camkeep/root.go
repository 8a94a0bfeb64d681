package main

import (
	"fmt"
	"os"

	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "camkeep",
	Short: "camkeep - retention for camera footage archives",
	Long: `camkeep keeps a camera footage archive within its disk budget.

Each run works on the per-day folders of the archive, newest first:
  - the newest footage is protected up to the recent budget
  - older clips without target objects (e.g. "person") are removed
  - whole days are evicted, oldest first, beyond the historical budget

Every decision is re-derived from the filesystem, so an interrupted run is
completed by the next one.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "camkeep.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadConfig loads the process-wide configuration and installs the logger
// it describes.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	cfg := config.GetConfig()

	if err := setupLogging(&cfg.Telemetry.Logging); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return cfg, nil
}

func setupLogging(cfg *config.LoggingConfig) error {
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	_, err := logging.Setup(logging.Config{
		Level:     level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
	})
	return err
}
