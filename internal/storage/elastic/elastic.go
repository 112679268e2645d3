// Package elastic implements the storage backend over a document-search
// engine. Records are indexed as self-describing documents with a
// normalized @timestamp field; queries translate the uniform filter into a
// bool query with fuzzy multi-field matching.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"logvault/internal/config"
	"logvault/internal/logger"
	"logvault/pkg/models"
)

type Store struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func New(cfg config.ElasticsearchConfig, log logger.Logger) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}

	log.Info("Elasticsearch storage backend initialized")
	return &Store{client: client, index: cfg.Index, logger: log}, nil
}

// document is the indexed shape: a LogRecord plus the normalized
// @timestamp the search engine sorts and ranges on.
type document struct {
	Timestamp  string         `json:"timestamp"`
	ATimestamp string         `json:"@timestamp"`
	Level      string         `json:"level"`
	Service    string         `json:"service"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata"`
	ProjectID  string         `json:"project_id"`
}

func (s *Store) Save(ctx context.Context, record *models.LogRecord) error {
	record.Normalize()

	ts := record.Timestamp.UTC().Format(time.RFC3339Nano)
	doc := document{
		Timestamp:  ts,
		ATimestamp: ts,
		Level:      string(record.Level),
		Service:    record.Service,
		Message:    record.Message,
		Metadata:   record.Metadata,
		ProjectID:  record.ProjectID,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request returned %s", res.Status())
	}

	var indexed struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indexed); err != nil {
		return fmt.Errorf("failed to decode index response: %w", err)
	}
	record.ID = indexed.ID

	s.logger.DebugwCtx(ctx, "Indexed log entry",
		"record_id", record.ID,
		"level", record.Level,
		"service", record.Service,
		"project_id", record.ProjectID,
	)
	return nil
}

func (s *Store) QueryLogs(ctx context.Context, filter models.QueryFilter) (models.QueryResult, error) {
	filter.Normalize()

	body, err := json.Marshal(buildSearchBody(filter))
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return models.QueryResult{}, fmt.Errorf("search request returned %s", res.Status())
	}

	logs, total, err := parseSearchResponse(res.Body)
	if err != nil {
		return models.QueryResult{}, err
	}

	return models.NewQueryResult(logs, total, filter.Page, filter.Size), nil
}

func (s *Store) UniqueServices(ctx context.Context) ([]string, error) {
	body, err := json.Marshal(buildServicesAggBody())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregation body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregation request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("aggregation request returned %s", res.Status())
	}

	services, err := parseServicesResponse(res.Body)
	if err != nil {
		return nil, err
	}
	sort.Strings(services)
	return services, nil
}

func (s *Store) HealthCheck(ctx context.Context) bool {
	res, err := s.client.Cluster.Health(
		s.client.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		s.logger.Warnw("Elasticsearch health check failed", "error", err)
		return false
	}
	defer res.Body.Close()

	if res.IsError() {
		return false
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return false
	}
	return health.Status == "green" || health.Status == "yellow"
}

func (s *Store) Close() error {
	// The underlying HTTP transport holds no resources that outlive idle
	// connections.
	return nil
}
