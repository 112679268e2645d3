package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"logvault/internal/logger"
	"logvault/pkg/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgresmodule.Run(ctx, "postgres:15",
		postgresmodule.WithDatabase("logs_test"),
		postgresmodule.WithUsername("test_user"),
		postgresmodule.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	conn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, runMigrations(db))

	store := NewWithDB(db, logger.NopLogger())
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func record(service string, level models.Level, project string, ts time.Time) *models.LogRecord {
	return &models.LogRecord{
		Timestamp: ts,
		Level:     level,
		Service:   service,
		Message:   fmt.Sprintf("%s event from %s", level, service),
		Metadata:  map[string]any{"host": "node-1"},
		ProjectID: project,
	}
}

func TestSaveAndQueryRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := record("auth", models.LevelError, "p1", ts)
	require.NoError(t, store.Save(ctx, rec))
	assert.NotEmpty(t, rec.ID, "save must assign an ID")

	res, err := store.QueryLogs(ctx, models.QueryFilter{Service: "auth", ProjectID: "p1"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Len(t, res.Logs, 1)

	got := res.Logs[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, models.LevelError, got.Level)
	assert.Equal(t, "auth", got.Service)
	assert.Equal(t, "p1", got.ProjectID)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, "node-1", got.Metadata["host"])
}

func TestQueryFilterSemantics(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, record("auth", models.LevelError, "p1", base.Add(1*time.Hour))))
	require.NoError(t, store.Save(ctx, record("billing", models.LevelInfo, "p1", base.Add(2*time.Hour))))
	require.NoError(t, store.Save(ctx, record("auth", models.LevelInfo, "p2", base.Add(3*time.Hour))))

	t.Run("service and project", func(t *testing.T) {
		res, err := store.QueryLogs(ctx, models.QueryFilter{Service: "auth", ProjectID: "p1"})
		require.NoError(t, err)
		require.Equal(t, 1, res.Total)
		assert.Equal(t, "auth", res.Logs[0].Service)
		assert.Equal(t, models.LevelError, res.Logs[0].Level)
	})

	t.Run("level filter excludes other levels", func(t *testing.T) {
		res, err := store.QueryLogs(ctx, models.QueryFilter{Level: "ERROR"})
		require.NoError(t, err)
		for _, rec := range res.Logs {
			assert.Equal(t, models.LevelError, rec.Level)
		}
		assert.Equal(t, 1, res.Total)
	})

	t.Run("ALL level matches every record", func(t *testing.T) {
		res, err := store.QueryLogs(ctx, models.QueryFilter{Level: "ALL"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("search matches message and service", func(t *testing.T) {
		res, err := store.QueryLogs(ctx, models.QueryFilter{Search: "billing"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})

	t.Run("time range is inclusive", func(t *testing.T) {
		res, err := store.QueryLogs(ctx, models.QueryFilter{
			From: base.Add(1 * time.Hour),
			To:   base.Add(2 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
	})
}

func TestQueryOrderingAndPagination(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	const total = 7
	for i := 0; i < total; i++ {
		require.NoError(t, store.Save(ctx, record("api", models.LevelInfo, "p1", base.Add(time.Duration(i)*time.Minute))))
	}

	var seen []string
	for page := 1; ; page++ {
		res, err := store.QueryLogs(ctx, models.QueryFilter{Page: page, Size: 3})
		require.NoError(t, err)
		assert.Equal(t, total, res.Total)
		assert.Equal(t, 3, res.TotalPages)
		assert.LessOrEqual(t, len(res.Logs), 3)

		for i := 1; i < len(res.Logs); i++ {
			assert.False(t, res.Logs[i].Timestamp.After(res.Logs[i-1].Timestamp),
				"page %d not sorted newest first", page)
		}
		for _, rec := range res.Logs {
			seen = append(seen, rec.ID)
		}
		if page >= res.TotalPages {
			break
		}
	}

	// Union of pages covers everything exactly once.
	assert.Len(t, seen, total)
	unique := map[string]struct{}{}
	for _, id := range seen {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, total)
}

func TestUniqueServicesSorted(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, svc := range []string{"zeta", "auth", "billing", "auth"} {
		require.NoError(t, store.Save(ctx, record(svc, models.LevelInfo, "p1", base)))
	}

	services, err := store.UniqueServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth", "billing", "zeta"}, services)
}

func TestHealthCheck(t *testing.T) {
	store := setupStore(t)
	assert.True(t, store.HealthCheck(context.Background()))
}
