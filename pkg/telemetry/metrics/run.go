package metrics

import (
	"time"

	"camkeep-hq/camkeep/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks retention runs and the footage they keep.
type RunMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastRun     prometheus.Gauge
	tierFolders *prometheus.GaugeVec
	tierSizeGB  *prometheus.GaugeVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of retention runs by mode and status",
			},
			[]string{"mode", "status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Retention run duration in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time at which the last completed run finished",
			},
		),

		tierFolders: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tier_folders",
				Help:      "Day folders kept per tier after the last run",
			},
			[]string{"tier"},
		),

		tierSizeGB: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tier_size_gb",
				Help:      "Footage kept per tier after the last run, in GB",
			},
			[]string{"tier"},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.lastRun,
		rm.tierFolders,
		rm.tierSizeGB,
	)

	return rm
}

// RecordRun records a finished run.
func (rm *RunMetrics) RecordRun(mode, status string, duration time.Duration, finished time.Time) {
	rm.runsTotal.WithLabelValues(mode, status).Inc()
	if status != "completed" {
		return
	}
	rm.runDuration.Observe(duration.Seconds())
	rm.lastRun.Set(float64(finished.Unix()))
}

// SetTier sets the tier gauges.
func (rm *RunMetrics) SetTier(tier string, folders int, sizeGB float64) {
	rm.tierFolders.WithLabelValues(tier).Set(float64(folders))
	rm.tierSizeGB.WithLabelValues(tier).Set(sizeGB)
}
