// Package objectstore implements the storage backend over an S3-compatible
// object store. Each record is one JSON object under a time-partitioned
// key, with a metadata sidecar carrying the exact-match fields so queries
// can skip bodies that cannot match.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"logvault/internal/config"
	"logvault/internal/constants"
	"logvault/internal/logger"
	"logvault/pkg/models"
)

type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger logger.Logger
}

func New(ctx context.Context, cfg config.S3Config, log logger.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = constants.DefaultObjectPrefix
	}

	store := &Store{client: client, bucket: cfg.Bucket, prefix: prefix, logger: log}
	if err := store.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	log.Info("S3 storage backend initialized")
	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
	if err != nil {
		// Another writer may have raced us to the creation.
		code := minio.ToErrorResponse(err).Code
		if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, record *models.LogRecord) error {
	record.Normalize()

	key := objectKey(s.prefix, record)
	record.ID = key

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{
			ContentType: "application/json",
			UserMetadata: map[string]string{
				metaLevel:   string(record.Level),
				metaService: record.Service,
				metaProject: record.ProjectID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %q: %w", key, err)
	}

	s.logger.DebugwCtx(ctx, "Stored log entry",
		"record_id", record.ID,
		"level", record.Level,
		"service", record.Service,
		"project_id", record.ProjectID,
	)
	return nil
}

func (s *Store) QueryLogs(ctx context.Context, filter models.QueryFilter) (models.QueryResult, error) {
	filter.Normalize()

	prefix := s.listPrefix(filter)
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var matched []models.LogRecord
	for obj := range objects {
		if obj.Err != nil {
			return models.QueryResult{}, fmt.Errorf("failed to list objects under %q: %w", prefix, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		// The key timestamp has second resolution, so the pre-filter
		// keeps anything within a second of the range bounds.
		if ts, ok := timestampFromKey(obj.Key); ok {
			if !filter.From.IsZero() && ts.Add(time.Second).Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ts.After(filter.To.Add(time.Second)) {
				continue
			}
		}

		stat, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			s.logger.Warnw("Failed to stat object, skipping", "key", obj.Key, "error", err)
			continue
		}
		if !metadataMatches(stat.UserMetadata, filter) {
			continue
		}

		rec, err := s.fetch(ctx, obj.Key)
		if err != nil {
			s.logger.Warnw("Failed to read object, skipping", "key", obj.Key, "error", err)
			continue
		}
		if !recordMatches(rec, filter) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Size
	if end > total {
		end = total
	}

	return models.NewQueryResult(matched[start:end], total, filter.Page, filter.Size), nil
}

func (s *Store) fetch(ctx context.Context, key string) (models.LogRecord, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return models.LogRecord{}, err
	}
	defer obj.Close()

	var rec models.LogRecord
	if err := json.NewDecoder(obj).Decode(&rec); err != nil {
		return models.LogRecord{}, fmt.Errorf("failed to decode object body: %w", err)
	}
	rec.ID = key
	return rec, nil
}

func (s *Store) UniqueServices(ctx context.Context) ([]string, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + "/",
		Recursive: true,
	})

	seen := map[string]struct{}{}
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		stat, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			s.logger.Warnw("Failed to stat object, skipping", "key", obj.Key, "error", err)
			continue
		}
		if svc := metaValue(stat.UserMetadata, metaService); svc != "" {
			seen[svc] = struct{}{}
		}
	}

	services := make([]string, 0, len(seen))
	for svc := range seen {
		services = append(services, svc)
	}
	sort.Strings(services)
	return services, nil
}

func (s *Store) HealthCheck(ctx context.Context) bool {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Warnw("S3 health check failed", "error", err)
		return false
	}
	return exists
}

func (s *Store) Close() error {
	return nil
}
