package storage

import (
	"context"

	"logvault/internal/config"
	"logvault/internal/constants"
	"logvault/internal/logger"
	"logvault/internal/storage/elastic"
	"logvault/internal/storage/objectstore"
	"logvault/internal/storage/postgres"
	"logvault/pkg/errors"
)

// NewDefaultSelector wires the selector to the real backend constructors.
func NewDefaultSelector(cfg config.StorageConfig, log logger.Logger) *Selector {
	factory := func(ctx context.Context, name string) (Backend, error) {
		var (
			backend Backend
			err     error
		)
		switch name {
		case constants.BackendPostgres:
			backend, err = postgres.New(ctx, cfg.Postgres, log)
		case constants.BackendElasticsearch:
			backend, err = elastic.New(cfg.Elasticsearch, log)
		case constants.BackendS3:
			backend, err = objectstore.New(ctx, cfg.S3, log)
		default:
			return nil, errors.ErrConfiguration.WithMessage("unsupported storage backend %q", name)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrUnavailable)
		}
		return Instrument(name, backend), nil
	}
	return NewSelector(cfg.Backend, DefaultCacheCapacity, factory, log)
}
