// Package ingest carries log records through the broker: the producer
// validates and publishes at the edge, the consumer drains the topic into
// the configured storage backend.
package ingest

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"logvault/internal/config"
	"logvault/internal/constants"
	"logvault/internal/logger"
	"logvault/pkg/errors"
	"logvault/pkg/metrics"
	"logvault/pkg/models"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes validated log records to the ingest topic. Records
// are keyed by service so one service's records stay ordered within a
// partition.
type Producer struct {
	writer kafkaWriter
	logger logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
	}

	log.Infow("Kafka producer initialized",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)
	return &Producer{writer: writer, logger: log}
}

func (p *Producer) Publish(ctx context.Context, record *models.LogRecord) error {
	if err := record.Validate(); err != nil {
		metrics.RecordsPublishedTotal.WithLabelValues("rejected").Inc()
		return errors.ErrValidation.WithCause(err)
	}
	record.Normalize()

	value, err := json.Marshal(record)
	if err != nil {
		metrics.RecordsPublishedTotal.WithLabelValues("error").Inc()
		return errors.ErrInternal.WithMessage("failed to marshal record").WithCause(err)
	}

	msg := kafka.Message{
		Key:   []byte(record.Service),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.RecordsPublishedTotal.WithLabelValues("error").Inc()
		return errors.ErrUnavailable.WithMessage("failed to publish record").WithCause(err)
	}

	metrics.RecordsPublishedTotal.WithLabelValues("success").Inc()
	p.logger.DebugwCtx(ctx, "Published log record",
		"service", record.Service,
		"level", record.Level,
		"project_id", record.ProjectID,
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
