package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"logvault/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("broker.kafka.topic", constants.DefaultTopic)
	viper.SetDefault("broker.kafka.group_id", constants.DefaultGroupID)
	viper.SetDefault("broker.kafka.commit_interval", constants.DefaultCommitInterval)
	viper.SetDefault("storage.backend", constants.DefaultBackend)
	viper.SetDefault("storage.elasticsearch.index", constants.DefaultIndex)
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.prefix", constants.DefaultObjectPrefix)
	viper.SetDefault("dedup.ttl_seconds", constants.DefaultDedupTTLSeconds)
	viper.SetDefault("logging.level", "info")
}

func bindEnvVariables() {
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.topic", "BROKER_KAFKA_TOPIC")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")

	viper.BindEnv("storage.backend", "STORAGE_BACKEND")

	viper.BindEnv("storage.postgres.host", "STORAGE_POSTGRES_HOST")
	viper.BindEnv("storage.postgres.port", "STORAGE_POSTGRES_PORT")
	viper.BindEnv("storage.postgres.user", "STORAGE_POSTGRES_USER")
	viper.BindEnv("storage.postgres.password", "STORAGE_POSTGRES_PASSWORD")
	viper.BindEnv("storage.postgres.dbname", "STORAGE_POSTGRES_DBNAME")
	viper.BindEnv("storage.postgres.sslmode", "STORAGE_POSTGRES_SSLMODE")

	viper.BindEnv("storage.elasticsearch.addresses", "STORAGE_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("storage.elasticsearch.username", "STORAGE_ELASTICSEARCH_USERNAME")
	viper.BindEnv("storage.elasticsearch.password", "STORAGE_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("storage.elasticsearch.index", "STORAGE_ELASTICSEARCH_INDEX")

	viper.BindEnv("storage.s3.endpoint", "STORAGE_S3_ENDPOINT")
	viper.BindEnv("storage.s3.access_key", "STORAGE_S3_ACCESS_KEY")
	viper.BindEnv("storage.s3.secret_key", "STORAGE_S3_SECRET_KEY")
	viper.BindEnv("storage.s3.bucket", "STORAGE_S3_BUCKET")
	viper.BindEnv("storage.s3.region", "STORAGE_S3_REGION")
	viper.BindEnv("storage.s3.prefix", "STORAGE_S3_PREFIX")

	viper.BindEnv("dedup.enabled", "DEDUP_ENABLED")
	viper.BindEnv("dedup.redis.host", "DEDUP_REDIS_HOST")
	viper.BindEnv("dedup.redis.port", "DEDUP_REDIS_PORT")
	viper.BindEnv("dedup.redis.password", "DEDUP_REDIS_PASSWORD")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOGGING_LEVEL")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if addrsEnv := viper.GetString("STORAGE_ELASTICSEARCH_ADDRESSES"); addrsEnv != "" {
		addrs := strings.Split(addrsEnv, ",")
		for i := range addrs {
			addrs[i] = strings.TrimSpace(addrs[i])
		}
		if len(addrs) > 0 && addrs[0] != "" {
			cfg.Storage.Elasticsearch.Addresses = addrs
		}
	}

	return nil
}
