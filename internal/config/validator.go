package config

import (
	"fmt"

	"logvault/internal/constants"
)

var validBackends = map[string]struct{}{
	constants.BackendPostgres:      {},
	constants.BackendElasticsearch: {},
	constants.BackendS3:            {},
}

// ValidateStatic checks the settings that cannot change at runtime. Only the
// selected backend's connection settings are required; the others stay
// optional so a per-query override can fail lazily with a clear error.
func ValidateStatic(cfg *Config) error {
	if len(cfg.Broker.Kafka.Brokers) == 0 {
		return fmt.Errorf("broker.kafka.brokers is required")
	}
	if cfg.Broker.Kafka.Topic == "" {
		return fmt.Errorf("broker.kafka.topic is required")
	}
	if cfg.Broker.Kafka.GroupID == "" {
		return fmt.Errorf("broker.kafka.group_id is required")
	}

	if _, ok := validBackends[cfg.Storage.Backend]; !ok {
		return fmt.Errorf("storage.backend %q is invalid, valid options: %s, %s, %s",
			cfg.Storage.Backend,
			constants.BackendPostgres, constants.BackendElasticsearch, constants.BackendS3)
	}

	switch cfg.Storage.Backend {
	case constants.BackendPostgres:
		if cfg.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for the postgres backend")
		}
		if cfg.Storage.Postgres.DBName == "" {
			return fmt.Errorf("storage.postgres.dbname is required for the postgres backend")
		}
	case constants.BackendElasticsearch:
		if len(cfg.Storage.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("storage.elasticsearch.addresses is required for the elasticsearch backend")
		}
	case constants.BackendS3:
		if cfg.Storage.S3.Endpoint == "" {
			return fmt.Errorf("storage.s3.endpoint is required for the s3 backend")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	}

	if cfg.Dedup.Enabled && cfg.Dedup.Redis.Host == "" {
		return fmt.Errorf("dedup.redis.host is required when dedup is enabled")
	}

	return nil
}
