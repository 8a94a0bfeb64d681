package metrics

import (
	"time"

	"camkeep-hq/camkeep/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the camkeep metrics and the registry they are registered in.
// Recording methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics     *RunMetrics
	removalMetrics *RemovalMetrics
	cacheMetrics   *CacheMetrics
}

// NewCollector creates a collector with the specified configuration and
// registry. If registry is nil, a new registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RunDurationBuckets) == 0 {
		cfg.RunDurationBuckets = config.DefaultRunDurationBuckets()
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		runMetrics:     NewRunMetrics(cfg, registry),
		removalMetrics: NewRemovalMetrics(cfg, registry),
		cacheMetrics:   NewCacheMetrics(cfg, registry),
	}
}

// RecordRun records a finished run.
//
// Parameters:
//   - mode: "live" or "dry_run"
//   - status: "completed", "skipped" or "failed"
//   - duration: wall time of the run
//   - finished: end of the run; only completed runs move last_run_timestamp
func (c *Collector) RecordRun(mode, status string, duration time.Duration, finished time.Time) {
	if !c.config.Enabled {
		return
	}
	c.runMetrics.RecordRun(mode, status, duration, finished)
}

// RecordTier sets the kept footage of a tier after a run.
func (c *Collector) RecordTier(tier string, folders int, sizeGB float64) {
	if !c.config.Enabled {
		return
	}
	c.runMetrics.SetTier(tier, folders, sizeGB)
}

// RecordFileRemoved counts a removed file.
func (c *Collector) RecordFileRemoved(reason string) {
	if !c.config.Enabled {
		return
	}
	c.removalMetrics.filesRemoved.WithLabelValues(reason).Inc()
}

// RecordFolderRemoved counts a removed folder.
func (c *Collector) RecordFolderRemoved(reason string) {
	if !c.config.Enabled {
		return
	}
	c.removalMetrics.foldersRemoved.WithLabelValues(reason).Inc()
}

// RecordRemovalFailure counts a failed deletion of the given kind.
func (c *Collector) RecordRemovalFailure(kind string) {
	if !c.config.Enabled {
		return
	}
	c.removalMetrics.failures.WithLabelValues(kind).Inc()
}

// RecordCacheStats adds the size cache counters of one run.
func (c *Collector) RecordCacheStats(hits, misses, recounts uint64) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.Record(hits, misses, recounts)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether metrics are collected.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}
