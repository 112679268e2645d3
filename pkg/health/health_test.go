package health

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAggregatesHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(NewBackendChecker("postgres", func(context.Context) bool { return true }))
	registry.Register(NewBackendChecker("s3", func(context.Context) bool { return true }))

	h := registry.Check(context.Background())

	assert.Equal(t, StatusHealthy, h.Status)
	require.Len(t, h.Checks, 2)
	assert.Equal(t, StatusHealthy, h.Checks["postgres"].Status)
	assert.Equal(t, StatusHealthy, h.Checks["s3"].Status)
}

func TestRegistryOneFailureMakesUnhealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(NewBackendChecker("postgres", func(context.Context) bool { return true }))
	registry.Register(NewBackendChecker("elasticsearch", func(context.Context) bool { return false }))

	h := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Equal(t, StatusHealthy, h.Checks["postgres"].Status)
	assert.Equal(t, StatusUnhealthy, h.Checks["elasticsearch"].Status)
	assert.NotEmpty(t, h.Checks["elasticsearch"].Message)
}

func TestBackendCheckerReportsProbeResult(t *testing.T) {
	up := NewBackendChecker("postgres", func(context.Context) bool { return true })
	assert.NoError(t, up.Check(context.Background()))
	assert.Equal(t, "postgres", up.Name())

	down := NewBackendChecker("postgres", func(context.Context) bool { return false })
	assert.Error(t, down.Check(context.Background()))
}

func TestKafkaCheckerDialsBroker(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	checker := NewKafkaChecker(listener.Addr().String())
	assert.Equal(t, "kafka", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	listener.Close()
	assert.Error(t, checker.Check(context.Background()))
}
