// Package logging configures log/slog for camkeep.
//
// New builds a *slog.Logger from the telemetry.logging configuration; Setup
// also installs it as the default logger, which is what every component
// derives its own logger from:
//
//	logger := slog.Default().With("component", "retention")
//
// Loggers built here add the run ID and the active trace and span IDs found
// in the context to every record logged with a *Context method:
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "run started")
//	// ... run_id=6f1c... trace_id=4bf9... msg="run started"
//
// # Formats
//
//   - json: one JSON object per line, for log shippers
//   - text: slog's key=value format
//   - console: key=value without timestamps, for interactive use
package logging
