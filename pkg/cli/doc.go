/*
Package cli provides command-line interface utilities for camkeep.

The cli package includes output formatters, reports, progress display and
signal handling used by the camkeep command.

Output Formatting:

Commands print either human-readable text or JSON:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, cli.SummaryReport{Summary: summary}); err != nil {
		return err
	}

Values implementing TextWriter render themselves in text mode; everything else
is printed with %v.

Progress Reporting:

Runs report per-phase progress through a PhaseProgress:

	progress := cli.NewPhaseProgress(os.Stderr)
	runner := retention.NewRunner(source, retention.RunnerOptions{Progress: progress.Report})

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
