package api

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crawlytics/dashgeom/pkg/observability"
)

const metricPrefix = "dashgeom_"

// Metrics bridges the engine's observability hooks onto Prometheus.
// The observability package stays backend-agnostic; this adapter is the
// only place that knows the deployment scrapes Prometheus.
type Metrics struct {
	computations  *prometheus.CounterVec
	computeTime   prometheus.Histogram
	aggregateTime prometheus.Histogram
	layoutTime    *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
}

// NewMetrics registers the service metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		computations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "computations_total",
			Help: "Layout computations by outcome",
		}, []string{"status"}),
		computeTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "compute_duration_seconds",
			Help:    "End-to-end computation duration",
			Buckets: prometheus.DefBuckets,
		}),
		aggregateTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "aggregate_duration_seconds",
			Help:    "Snapshot aggregation duration",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		layoutTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "layout_duration_seconds",
			Help:    "Per-chart layout duration",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"chart"}),
		cacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "cache_events_total",
			Help: "Cache hits, misses, and writes by key type",
		}, []string{"event", "key"}),
	}
}

// OnComputeStart implements observability.EngineHooks.
func (m *Metrics) OnComputeStart(ctx context.Context, snapshotHash string, sources int) {}

// OnComputeComplete records the outcome and duration of a computation.
func (m *Metrics) OnComputeComplete(ctx context.Context, snapshotHash string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.computations.WithLabelValues(status).Inc()
	m.computeTime.Observe(d.Seconds())
}

// OnAggregateStart implements observability.EngineHooks.
func (m *Metrics) OnAggregateStart(ctx context.Context, sources int) {}

// OnAggregateComplete records aggregation duration.
func (m *Metrics) OnAggregateComplete(ctx context.Context, sources int, d time.Duration, err error) {
	m.aggregateTime.Observe(d.Seconds())
}

// OnLayoutStart implements observability.EngineHooks.
func (m *Metrics) OnLayoutStart(ctx context.Context, chartKind string) {}

// OnLayoutComplete records per-chart layout duration.
func (m *Metrics) OnLayoutComplete(ctx context.Context, chartKind string, d time.Duration, err error) {
	m.layoutTime.WithLabelValues(chartKind).Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(ctx context.Context, keyType string) {
	m.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(ctx context.Context, keyType string) {
	m.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(ctx context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues("set", keyType).Inc()
}

var (
	_ observability.EngineHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
)
