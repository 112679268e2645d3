package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_published_total",
			Help: "Total number of log records published to the queue (count)",
		},
		[]string{"status"},
	)

	RecordsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_records_total",
			Help: "Total number of log records processed by the storage consumer (count)",
		},
		[]string{"backend", "status"},
	)

	StorageSaveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_save_duration_ms",
			Help:    "Save latency per storage backend in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"backend"},
	)

	StorageQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_query_duration_ms",
			Help:    "Query latency per storage backend and operation in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"backend", "operation"},
	)

	DedupSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "consumer_dedup_skipped_total",
			Help: "Records skipped by the idempotency guard (count)",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_retry_attempts_total",
			Help: "Save retry attempts in the storage consumer (count)",
		},
		[]string{"backend"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RegisterIngestMetrics() {
	prometheus.MustRegister(
		RecordsPublishedTotal,
		RecordsConsumedTotal,
		DedupSkippedTotal,
		RetryAttemptsTotal,
	)
}

func RegisterStorageMetrics() {
	prometheus.MustRegister(
		StorageSaveDuration,
		StorageQueryDuration,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
}
