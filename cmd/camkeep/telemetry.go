package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/telemetry/metrics"
	"camkeep-hq/camkeep/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

// telemetry bundles the metrics collector and tracer of a command.
type telemetry struct {
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

func newTelemetry(cfg *config.TelemetryConfig) (*telemetry, error) {
	tracer, err := tracing.New(&cfg.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &telemetry{
		metrics: metrics.NewCollector(&cfg.Metrics, prometheus.NewRegistry()),
		tracer:  tracer,
	}, nil
}

// shutdown flushes pending spans.
func (t *telemetry) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.tracer.Shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}
