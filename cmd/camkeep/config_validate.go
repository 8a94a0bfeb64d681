package main

import (
	"errors"
	"fmt"

	"camkeep-hq/camkeep/pkg/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and report every
validation error at once.

Examples:
  camkeep config validate --config /etc/camkeep/camkeep.yaml`,
	RunE: validateConfig,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintf(out, "✗ %s is invalid:\n", cfgFile)
			for _, fieldErr := range validationErr.Errors {
				fmt.Fprintf(out, "  - %s\n", fieldErr.Error())
			}
			return validationErr
		}
		return err
	}

	fmt.Fprintf(out, "✓ Configuration valid (%s)\n", cfgFile)
	fmt.Fprintf(out, "  archive:    %s\n", cfg.Archive.Root)
	fmt.Fprintf(out, "  recent:     %g GB\n", cfg.Retention.RecentBudgetGB)
	fmt.Fprintf(out, "  historical: %g GB\n", cfg.Retention.HistoricalBudgetGB)
	fmt.Fprintf(out, "  targets:    %v\n", cfg.Retention.TargetObjects)
	if cfg.Retention.DryRun {
		fmt.Fprintln(out, "  dry run:    yes")
	}
	return nil
}
