package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for retention run IDs.
	RunIDKey contextKey = "run_id"

	// PhaseKey is the context key for the retention phase being executed.
	PhaseKey contextKey = "phase"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithPhase adds the current phase name to the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// GetPhase retrieves the phase name from the context.
func GetPhase(ctx context.Context) string {
	if phase, ok := ctx.Value(PhaseKey).(string); ok {
		return phase
	}
	return ""
}

// contextAttrs extracts the log fields carried by ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}
	if phase := GetPhase(ctx); phase != "" {
		attrs = append(attrs, slog.String("phase", phase))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return attrs
}
