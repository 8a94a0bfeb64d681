package main

import (
	"camkeep-hq/camkeep/pkg/archive"
	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/detection"
	"camkeep-hq/camkeep/pkg/retention"

	"github.com/spf13/cobra"
)

var scanFlags struct {
	output string
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Preview what a run would keep and remove",
	Long: `List the day folders of the archive with the tier a run would put them in,
the files it would remove and the files still waiting for analysis.

scan always runs as a dry run, leaves the size sidecars untouched and is
not recorded in the run history.

Examples:
  camkeep scan
  camkeep scan -o json`,
	RunE: scanArchive,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanFlags.output, "output", "o", "text", "output format: text, json")
}

func scanArchive(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(scanFlags.output)
	if err != nil {
		return err
	}

	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := *loaded
	cfg.Retention.DryRun = true

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	runner := retention.NewRunner(func() *config.Config { return &cfg }, retention.RunnerOptions{Preview: true})
	summary, err := runner.Run(ctx)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}

	files, err := archive.ListVideoFiles(cfg.Archive.Root, cfg.Archive.VideoExtensions)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	reader := detection.NewReader(cfg.Archive.DetectionsFilename)
	unanalyzed := reader.Unanalyzed(files)

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.ScanReport{
		Summary:    summary,
		Unanalyzed: unanalyzed,
		Analysis:   cli.CountAnalysis(reader.Analyzed(files), unanalyzed),
	})
}
