package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logvault/internal/logger"
	"logvault/pkg/models"
)

func setupGuard(t *testing.T, ttl time.Duration) (*Guard, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	guard := NewWithClient(client, ttl, logger.NopLogger())
	t.Cleanup(func() {
		guard.Close()
	})
	return guard, srv
}

func testRecord(message string) *models.LogRecord {
	return &models.LogRecord{
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Level:     models.LevelError,
		Service:   "auth",
		Message:   message,
		ProjectID: "p1",
	}
}

func TestSeenFirstAndSecondSighting(t *testing.T) {
	guard, _ := setupGuard(t, time.Hour)
	ctx := context.Background()

	rec := testRecord("login failed")

	seen, err := guard.Seen(ctx, rec)
	require.NoError(t, err)
	assert.False(t, seen, "first sighting must not be flagged")

	seen, err = guard.Seen(ctx, rec)
	require.NoError(t, err)
	assert.True(t, seen, "redelivery must be flagged")
}

func TestSeenDistinguishesContent(t *testing.T) {
	guard, _ := setupGuard(t, time.Hour)
	ctx := context.Background()

	seen, err := guard.Seen(ctx, testRecord("login failed"))
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.Seen(ctx, testRecord("login succeeded"))
	require.NoError(t, err)
	assert.False(t, seen, "different payloads must not collide")
}

func TestSeenExpiresWithTTL(t *testing.T) {
	guard, srv := setupGuard(t, time.Minute)
	ctx := context.Background()

	rec := testRecord("login failed")
	_, err := guard.Seen(ctx, rec)
	require.NoError(t, err)

	srv.FastForward(2 * time.Minute)

	seen, err := guard.Seen(ctx, rec)
	require.NoError(t, err)
	assert.False(t, seen, "mark must expire with the TTL")
}

func TestSeenIgnoresIDAndMetadata(t *testing.T) {
	guard, _ := setupGuard(t, time.Hour)
	ctx := context.Background()

	first := testRecord("login failed")
	first.ID = "a"
	first.Metadata = map[string]any{"host": "node-1"}

	second := testRecord("login failed")
	second.ID = "b"
	second.Metadata = map[string]any{"host": "node-2"}

	seen, err := guard.Seen(ctx, first)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.Seen(ctx, second)
	require.NoError(t, err)
	assert.True(t, seen, "broker-assigned fields must not affect identity")
}
