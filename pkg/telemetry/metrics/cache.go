package metrics

import (
	"camkeep-hq/camkeep/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the folder size cache.
//
// Metrics:
//   - camkeep_retention_size_cache_lookups_total: lookups by result (hit, miss)
//   - camkeep_retention_size_cache_recounts_total: folders recounted from disk
type CacheMetrics struct {
	lookupsTotal  *prometheus.CounterVec
	recountsTotal prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "size_cache_lookups_total",
				Help:      "Total number of folder size lookups by result",
			},
			[]string{"result"},
		),

		recountsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "size_cache_recounts_total",
				Help:      "Total number of folders whose size was recounted from disk",
			},
		),
	}

	registry.MustRegister(cm.lookupsTotal, cm.recountsTotal)

	return cm
}

// Record adds the counters of one run.
func (cm *CacheMetrics) Record(hits, misses, recounts uint64) {
	cm.lookupsTotal.WithLabelValues("hit").Add(float64(hits))
	cm.lookupsTotal.WithLabelValues("miss").Add(float64(misses))
	cm.recountsTotal.Add(float64(recounts))
}
