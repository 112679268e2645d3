// Package storage defines the capability contract every log storage backend
// implements, and the selector that resolves a backend name to a live,
// cached instance.
package storage

import (
	"context"

	"logvault/pkg/models"
)

// Backend is the uniform port over the relational, search and object-store
// engines. All implementations honor identical filter, ordering and
// pagination semantics.
//
// Query operations return explicit errors; an empty result with a nil error
// always means "no matches", never a swallowed backend failure.
type Backend interface {
	// Save persists one record, assigning its ID when the backend
	// generates identifiers.
	Save(ctx context.Context, record *models.LogRecord) error

	// QueryLogs returns the records matching the filter, sorted by
	// timestamp descending and sliced to the requested page.
	QueryLogs(ctx context.Context, filter models.QueryFilter) (models.QueryResult, error)

	// UniqueServices returns the distinct service names, alphabetically
	// sorted, case preserved.
	UniqueServices(ctx context.Context) ([]string, error)

	// HealthCheck is a cheap liveness probe of the underlying engine.
	HealthCheck(ctx context.Context) bool

	// Close releases backend-held resources. Idempotent.
	Close() error
}
