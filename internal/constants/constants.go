package constants

import "time"

// Backend names accepted by the selector and the storage.backend setting.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
	BackendS3            = "s3"
)

const (
	DefaultBackend = BackendPostgres
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second

	DefaultTopic          = "logs"
	DefaultGroupID        = "log-consumer-group"
	DefaultCommitInterval = time.Second
)

const (
	DefaultIndex        = "logs"
	DefaultObjectPrefix = "logs"

	// Cap on distinct service buckets returned by the search backend's
	// terms aggregation.
	UniqueServicesLimit = 1000
)

const (
	CacheKeyPrefixDedup    = "ingest:dedup:"
	DefaultDedupTTLSeconds = 3600
)

const (
	ShutdownTimeout = 5 * time.Second
)
