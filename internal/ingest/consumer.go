package ingest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"logvault/internal/config"
	"logvault/internal/logger"
	"logvault/internal/storage"
	"logvault/pkg/circuitbreaker"
	"logvault/pkg/errors"
	"logvault/pkg/logging"
	"logvault/pkg/metrics"
	"logvault/pkg/models"
	"logvault/pkg/retry"
)

type kafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// BackendResolver resolves a backend name to a live storage instance.
// Satisfied by storage.Selector.
type BackendResolver interface {
	Get(ctx context.Context, name string) (storage.Backend, error)
}

// Guard is the optional idempotency check applied before each save.
// Satisfied by dedup.Guard.
type Guard interface {
	Seen(ctx context.Context, record *models.LogRecord) (bool, error)
}

// Consumer drains the ingest topic and persists each record through the
// configured storage backend. Poison messages are logged and dropped so
// one bad record cannot wedge the partition.
type Consumer struct {
	reader   kafkaReader
	resolver BackendResolver
	backend  string
	guard    Guard
	breaker  *circuitbreaker.Wrapper
	policy   retry.Policy
	logger   logger.Logger
}

type ConsumerOptions struct {
	Backend string
	Policy  retry.Policy
	Guard   Guard
	Breaker *circuitbreaker.Wrapper
}

func NewConsumer(cfg config.KafkaConfig, resolver BackendResolver, opts ConsumerOptions, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: cfg.CommitInterval,
	})

	log.Infow("Kafka consumer initialized",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"group_id", cfg.GroupID,
		"backend", opts.Backend,
	)

	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = retry.DefaultPolicy()
	}

	return &Consumer{
		reader:   reader,
		resolver: resolver,
		backend:  opts.Backend,
		guard:    opts.Guard,
		breaker:  opts.Breaker,
		policy:   opts.Policy,
		logger:   log,
	}
}

// Run consumes until the context is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Storage consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, io.EOF) {
				c.logger.Info("Storage consumer stopping")
				return nil
			}
			return errors.ErrUnavailable.WithMessage("failed to read from topic").WithCause(err)
		}

		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.RecoverPanic(r)
			metrics.RecordsConsumedTotal.WithLabelValues(c.backend, "error").Inc()
			c.logger.Errorw("Panic while processing record",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}
	}()

	var record models.LogRecord
	if err := json.Unmarshal(msg.Value, &record); err != nil {
		metrics.RecordsConsumedTotal.WithLabelValues(c.backend, "malformed").Inc()
		c.logger.Warnw("Dropping malformed record",
			"error", err,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return
	}

	if err := record.Validate(); err != nil {
		metrics.RecordsConsumedTotal.WithLabelValues(c.backend, "rejected").Inc()
		c.logger.Warnw("Dropping invalid record",
			"error", err,
			"service", record.Service,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return
	}
	record.Normalize()

	ctx = logging.WithBackend(ctx, c.backend)
	ctx = logging.WithServiceName(ctx, record.Service)

	if c.guard != nil {
		seen, err := c.guard.Seen(ctx, &record)
		if err != nil {
			// The guard is best effort; a guard outage must not stall
			// ingestion.
			c.logger.WarnwCtx(ctx, "Dedup check failed, processing anyway", "error", err)
		} else if seen {
			metrics.DedupSkippedTotal.Inc()
			c.logger.DebugwCtx(ctx, "Skipping duplicate record",
				"service", record.Service,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			return
		}
	}

	if err := c.save(ctx, &record); err != nil {
		metrics.RecordsConsumedTotal.WithLabelValues(c.backend, "error").Inc()
		c.logger.ErrorwCtx(ctx, "Failed to persist record, dropping",
			"error", err,
			"service", record.Service,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return
	}

	metrics.RecordsConsumedTotal.WithLabelValues(c.backend, "success").Inc()
	ctx = logging.WithRecordID(ctx, record.ID)
	c.logger.DebugwCtx(ctx, "Persisted record", "service", record.Service)
}

func (c *Consumer) save(ctx context.Context, record *models.LogRecord) error {
	backend, err := c.resolver.Get(ctx, c.backend)
	if err != nil {
		return err
	}

	attempt := func() error {
		start := time.Now()
		saveErr := backend.Save(ctx, record)
		metrics.StorageSaveDuration.WithLabelValues(c.backend).
			Observe(float64(time.Since(start).Milliseconds()))
		return saveErr
	}

	if c.breaker != nil {
		inner := attempt
		attempt = func() error {
			return c.breaker.Execute(ctx, inner)
		}
	}

	return retry.RetryWithCallback(ctx, c.policy, attempt,
		func(attemptNum int, err error, nextDelay time.Duration) {
			metrics.RetryAttemptsTotal.WithLabelValues(c.backend).Inc()
			c.logger.WarnwCtx(ctx, "Retrying save",
				"attempt", attemptNum,
				"next_delay", nextDelay,
				"error", err,
			)
		},
	)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
