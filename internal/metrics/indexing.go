package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Indexing and sync Prometheus metrics.
var (
	IndexingTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "indexing_tasks_total",
			Help:      "Indexing task outcomes by action",
		},
		[]string{"action", "outcome"}, // outcome: success / retry / dead_letter
	)

	SyncPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "sync_passes_total",
			Help:      "Completed sync passes by outcome",
		},
		[]string{"pass", "status"}, // status: ok / error / skipped
	)

	SyncPassDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propsearch",
			Name:      "sync_pass_duration_seconds",
			Help:      "Sync pass duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"pass"},
	)

	SyncDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "sync_documents_total",
			Help:      "Documents enqueued by sync passes",
		},
		[]string{"pass", "action"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "propsearch",
			Name:      "queue_depth",
			Help:      "Pending indexing tasks",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propsearch",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers indexing Prometheus metrics. Must be
// called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexingTasksTotal)
	prometheus.MustRegister(SyncPassesTotal)
	prometheus.MustRegister(SyncPassDuration)
	prometheus.MustRegister(SyncDocumentsTotal)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(SearchCacheTotal)
	indexingMetricsRegistered = true
}

// WorkerMetrics adapts the indexing counters to the worker pool.
type WorkerMetrics struct{}

func (WorkerMetrics) TaskSucceeded(action string) {
	IndexingTasksTotal.WithLabelValues(action, "success").Inc()
}

func (WorkerMetrics) TaskRetried(action string) {
	IndexingTasksTotal.WithLabelValues(action, "retry").Inc()
}

func (WorkerMetrics) TaskDeadLettered(action string) {
	IndexingTasksTotal.WithLabelValues(action, "dead_letter").Inc()
}

// SearchMetrics adapts the cache counters to the search service.
type SearchMetrics struct{}

func (SearchMetrics) CacheHit() {
	SearchCacheTotal.WithLabelValues("hit").Inc()
}

func (SearchMetrics) CacheMiss() {
	SearchCacheTotal.WithLabelValues("miss").Inc()
}

// SyncMetrics adapts the sync counters to the pass scheduler.
type SyncMetrics struct{}

func (SyncMetrics) PassCompleted(pass, status string, duration time.Duration) {
	SyncPassesTotal.WithLabelValues(pass, status).Inc()
	SyncPassDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

func (SyncMetrics) DocumentsEnqueued(pass, action string, n int) {
	SyncDocumentsTotal.WithLabelValues(pass, action).Add(float64(n))
}

func (SyncMetrics) QueueDepth(n int) {
	QueueDepth.Set(float64(n))
}
