package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logvault/pkg/models"
)

func TestInstrumentDelegates(t *testing.T) {
	stub := &stubBackend{name: "postgres"}
	wrapped := Instrument("postgres", stub)
	ctx := context.Background()

	require.NoError(t, wrapped.Save(ctx, &models.LogRecord{}))

	_, err := wrapped.QueryLogs(ctx, models.QueryFilter{})
	require.NoError(t, err)

	_, err = wrapped.UniqueServices(ctx)
	require.NoError(t, err)

	assert.True(t, wrapped.HealthCheck(ctx))

	require.NoError(t, wrapped.Close())
	assert.True(t, stub.closed.Load())
}
