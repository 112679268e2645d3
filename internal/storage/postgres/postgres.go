// Package postgres implements the storage backend over a relational row
// store. Filtering and pagination are pushed down into SQL; timestamp,
// level, service and project_id columns are indexed.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"logvault/internal/config"
	"logvault/internal/logger"
	"logvault/pkg/models"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// New opens the connection pool, verifies connectivity and applies the
// embedded schema migrations.
func New(ctx context.Context, cfg config.PostgresConfig, log logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("PostgreSQL storage backend initialized")
	return NewWithDB(db, log), nil
}

// NewWithDB wraps an already-open pool. The caller keeps ownership of
// migrations in this case.
func NewWithDB(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

func (s *Store) Save(ctx context.Context, record *models.LogRecord) error {
	record.Normalize()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO log_entries (id, timestamp, level, service, message, metadata, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.Timestamp, string(record.Level), record.Service, record.Message, metadata, record.ProjectID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log entry: %w", err)
	}

	s.logger.DebugwCtx(ctx, "Saved log entry",
		"record_id", record.ID,
		"level", record.Level,
		"service", record.Service,
		"project_id", record.ProjectID,
	)
	return nil
}

func (s *Store) QueryLogs(ctx context.Context, filter models.QueryFilter) (models.QueryResult, error) {
	filter.Normalize()
	where, args := buildWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM log_entries" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return models.QueryResult{}, fmt.Errorf("failed to count log entries: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, timestamp, level, service, message, metadata, project_id FROM log_entries%s ORDER BY timestamp DESC OFFSET $%d LIMIT $%d",
		where, len(args)+1, len(args)+2,
	)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Offset(), filter.Size)...)
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer rows.Close()

	var logs []models.LogRecord
	for rows.Next() {
		var (
			rec      models.LogRecord
			ts       time.Time
			level    string
			metadata []byte
		)
		if err := rows.Scan(&rec.ID, &ts, &level, &rec.Service, &rec.Message, &metadata, &rec.ProjectID); err != nil {
			return models.QueryResult{}, fmt.Errorf("failed to scan log entry: %w", err)
		}
		rec.Timestamp = ts.UTC()
		rec.Level = models.Level(level)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				s.logger.WarnwCtx(ctx, "Failed to decode metadata", "record_id", rec.ID, "error", err)
			}
		}
		logs = append(logs, rec)
	}
	if err := rows.Err(); err != nil {
		return models.QueryResult{}, fmt.Errorf("rows iteration error: %w", err)
	}

	return models.NewQueryResult(logs, total, filter.Page, filter.Size), nil
}

func (s *Store) UniqueServices(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT service FROM log_entries ORDER BY service")
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []string
	for rows.Next() {
		var svc string
		if err := rows.Scan(&svc); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		if svc != "" {
			services = append(services, svc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return services, nil
}

func (s *Store) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warnw("PostgreSQL health check failed", "error", err)
		return false
	}
	return true
}

func (s *Store) Close() error {
	return s.db.Close()
}
