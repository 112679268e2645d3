// Package dedup provides an optional idempotency guard for the storage
// consumer. Broker redeliveries of the same record are detected by a
// content hash kept in redis with a bounded TTL, so a crash between save
// and commit does not duplicate storage writes forever.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"logvault/internal/config"
	"logvault/internal/constants"
	"logvault/internal/logger"
	"logvault/pkg/models"
)

type Guard struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(ctx context.Context, cfg config.DedupConfig, log logger.Logger) (*Guard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttlSeconds := cfg.TTLSeconds
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultDedupTTLSeconds
	}

	log.Info("Deduplication guard initialized")
	return &Guard{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		logger: log,
	}, nil
}

// NewWithClient is for tests that bring their own redis.
func NewWithClient(client *redis.Client, ttl time.Duration, log logger.Logger) *Guard {
	return &Guard{client: client, ttl: ttl, logger: log}
}

// Seen marks the record and reports whether it was already marked within
// the TTL window. The mark is a single SETNX, so concurrent consumers
// agree on exactly one first sighting.
func (g *Guard) Seen(ctx context.Context, record *models.LogRecord) (bool, error) {
	key := constants.CacheKeyPrefixDedup + contentHash(record)

	created, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check failed: %w", err)
	}
	return !created, nil
}

func (g *Guard) Close() error {
	return g.client.Close()
}

// contentHash identifies a record by its payload rather than its broker
// position, so redelivered and reproduced copies collapse to one key.
func contentHash(record *models.LogRecord) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s",
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.Level,
		record.Service,
		record.Message,
		record.ProjectID,
	)
	return hex.EncodeToString(h.Sum(nil))
}
