// Package tracing wraps OpenTelemetry for camkeep runs.
//
// Each retention run is one trace: a "retention.run" root span with a child
// span per phase. Spans are exported over OTLP/gRPC. With tracing disabled a
// no-op tracer is used, so instrumented code does not need to check.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "retention.run")
//	defer span.End()
//
// # Sampling Strategies
//
//   - always: sample every run
//   - never: sample no runs
//   - ratio: sample a fraction of runs (sample_ratio)
//
// All samplers respect the sampling decision of a parent span.
package tracing
