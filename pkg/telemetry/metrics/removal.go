package metrics

import (
	"camkeep-hq/camkeep/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RemovalMetrics counts deletions.
type RemovalMetrics struct {
	filesRemoved   *prometheus.CounterVec
	foldersRemoved *prometheus.CounterVec
	failures       *prometheus.CounterVec
}

// NewRemovalMetrics creates and registers removal metrics with the provided registry.
func NewRemovalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RemovalMetrics {
	rm := &RemovalMetrics{
		filesRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_removed_total",
				Help:      "Total number of footage files removed, by reason",
			},
			[]string{"reason"},
		),

		foldersRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "folders_removed_total",
				Help:      "Total number of day folders removed, by reason",
			},
			[]string{"reason"},
		),

		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "removal_failures_total",
				Help:      "Total number of failed deletions, by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(rm.filesRemoved, rm.foldersRemoved, rm.failures)

	return rm
}
