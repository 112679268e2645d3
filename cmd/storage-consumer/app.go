package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"logvault/internal/config"
	"logvault/internal/constants"
	"logvault/internal/dedup"
	"logvault/internal/ingest"
	"logvault/internal/logger"
	"logvault/internal/storage"
	"logvault/pkg/circuitbreaker"
	"logvault/pkg/health"
	"logvault/pkg/logging"
	"logvault/pkg/metrics"
	"logvault/pkg/retry"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	selector *storage.Selector
	guard    *dedup.Guard
	consumer *ingest.Consumer
	server   *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("storage-consumer")
	}
	return &App{
		cfg:    cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	a.selector = storage.NewDefaultSelector(a.cfg.Storage, a.logger)

	policy := retry.Policy{
		MaxAttempts:     a.cfg.Retry.MaxAttempts,
		InitialInterval: a.cfg.Retry.InitialInterval,
		MaxInterval:     a.cfg.Retry.MaxInterval,
		Multiplier:      a.cfg.Retry.Multiplier,
		MaxElapsedTime:  a.cfg.Retry.MaxElapsedTime,
	}

	// Warm up the configured backend, retrying while its engine is still
	// coming up. A misconfigured backend name is fatal and fails
	// immediately.
	err := retry.Retry(ctx, policy, func() error {
		_, getErr := a.selector.Get(ctx, a.cfg.Storage.Backend)
		return getErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	opts := ingest.ConsumerOptions{
		Backend: a.cfg.Storage.Backend,
		Policy:  policy,
	}

	if a.cfg.Dedup.Enabled {
		guard, err := dedup.New(ctx, a.cfg.Dedup, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize dedup guard: %w", err)
		}
		a.guard = guard
		opts.Guard = guard
	}

	if a.cfg.CircuitBreaker.Enabled {
		opts.Breaker = circuitbreaker.NewWrapper(circuitbreaker.Config{
			Name:         "storage-save",
			MaxRequests:  a.cfg.CircuitBreaker.MaxRequests,
			Interval:     a.cfg.CircuitBreaker.Interval,
			Timeout:      a.cfg.CircuitBreaker.Timeout,
			FailureRatio: a.cfg.CircuitBreaker.FailureRatio,
			MinRequests:  a.cfg.CircuitBreaker.MinRequests,
		})
	}

	a.consumer = ingest.NewConsumer(a.cfg.Broker.Kafka, a.selector, opts, a.logger)

	metrics.RegisterIngestMetrics()
	metrics.RegisterStorageMetrics()
	if a.cfg.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	// The probe resolves per check; backend handles are not held across
	// selector evictions.
	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewBackendChecker(a.cfg.Storage.Backend, func(ctx context.Context) bool {
		backend, err := a.selector.Get(ctx, a.cfg.Storage.Backend)
		if err != nil {
			return false
		}
		return backend.HealthCheck(ctx)
	}))
	if len(a.cfg.Broker.Kafka.Brokers) > 0 {
		healthRegistry.Register(health.NewKafkaChecker(a.cfg.Broker.Kafka.Brokers[0]))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: mux,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.cfg.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.consumer.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warnw("HTTP server shutdown error", "error", err)
		}
		return a.consumer.Close()
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) {
	shutdownCtx := logging.WithServiceName(ctx, "storage-consumer")
	a.logger.InfowCtx(shutdownCtx, "Shutting down storage consumer")

	if a.guard != nil {
		if err := a.guard.Close(); err != nil {
			a.logger.Warnw("Dedup guard close error", "error", err)
		}
	}
	if a.selector != nil {
		if err := a.selector.Close(); err != nil {
			a.logger.Warnw("Storage selector close error", "error", err)
		}
	}
}
