package storage

import (
	"context"
	"time"

	"logvault/pkg/metrics"
	"logvault/pkg/models"
)

// instrumentedBackend records per-operation latency for whichever engine
// sits behind it. Save latency is observed at the call site in the
// consumer, where retries make each attempt visible.
type instrumentedBackend struct {
	Backend
	name string
}

// Instrument wraps a backend so its query operations report latency under
// the given backend name.
func Instrument(name string, backend Backend) Backend {
	return &instrumentedBackend{Backend: backend, name: name}
}

func (b *instrumentedBackend) QueryLogs(ctx context.Context, filter models.QueryFilter) (models.QueryResult, error) {
	start := time.Now()
	result, err := b.Backend.QueryLogs(ctx, filter)
	metrics.StorageQueryDuration.WithLabelValues(b.name, "query_logs").
		Observe(float64(time.Since(start).Milliseconds()))
	return result, err
}

func (b *instrumentedBackend) UniqueServices(ctx context.Context) ([]string, error) {
	start := time.Now()
	services, err := b.Backend.UniqueServices(ctx)
	metrics.StorageQueryDuration.WithLabelValues(b.name, "unique_services").
		Observe(float64(time.Since(start).Milliseconds()))
	return services, err
}
