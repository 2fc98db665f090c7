// Package main is the entry point for the batchq relay worker.
// It consumes batches from the inbound queue binding, decodes each
// message, and forwards the payloads to the outbound queue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"batchq/internal/config"
	"batchq/internal/metrics"
	"batchq/internal/ops"
	"batchq/internal/queue"
	kafkaqueue "batchq/internal/queue/kafka"
	memoryqueue "batchq/internal/queue/memory"
	postgresqueue "batchq/internal/queue/postgres"
	redisqueue "batchq/internal/queue/redisstream"
	"batchq/internal/worker"
)

// event is the payload type relayed between the inbound and outbound
// queues.
type event struct {
	Name  string         `json:"name"`
	Value float64        `json:"value"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}

	logger := initLogger(&cfg.Logger)

	logger.Info("configuration loaded",
		"path", *configPath,
		"backend_mode", cfg.Backend.Mode,
	)

	deps, cleanup, err := initDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	producer := queue.NewProducer[event](cfg.Producer.Queue, deps.transport)
	w := worker.New(deps.source, relayHandler(producer, logger), logger)

	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("worker error", "error", err)
			cancel()
		}
	}()

	server := ops.NewServer(&cfg.Server, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("ops server error", "error", err)
			cancel()
		}
	}()

	logger.Info("batchq started",
		"address", cfg.Server.Address(),
		"consume_queue", cfg.Consumer.Queue,
		"produce_queue", cfg.Producer.Queue,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}

	logger.Info("batchq stopped")
}

// relayHandler decodes every message in the batch and forwards it to the
// outbound producer. Messages that fail to decode are skipped; a
// transport failure marks the whole batch for redelivery.
func relayHandler(producer *queue.Producer[event], logger *slog.Logger) worker.Handler[event] {
	return func(ctx context.Context, batch *queue.Batch[event]) error {
		for msg, err := range batch.Iter().All() {
			if err != nil {
				metrics.MessagesDecodedTotal.WithLabelValues(batch.Queue(), "error").Inc()
				logger.Warn("skipping undecodable message",
					"error", err,
					"queue", batch.Queue(),
				)
				continue
			}
			metrics.MessagesDecodedTotal.WithLabelValues(batch.Queue(), "ok").Inc()

			if err := producer.Send(ctx, msg.Body); err != nil {
				var serr *queue.SerializationError
				if errors.As(err, &serr) {
					logger.Error("dropping unencodable message", "error", err, "id", msg.ID)
					continue
				}
				logger.Error("forward failed, retrying batch",
					"error", err,
					"id", msg.ID,
					"queue", batch.Queue(),
				)
				batch.RetryAll()
				return nil
			}
		}
		return nil
	}
}

// dependencies holds the backend bindings the worker runs against.
type dependencies struct {
	source    queue.Source
	transport queue.Transport
}

// initDependencies creates the backend source and transport based on
// config. Returns the dependencies and a cleanup function.
func initDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, func(), error) {
	var (
		source       queue.Source
		transport    queue.Transport
		cleanupFuncs []func()
	)

	switch cfg.Backend.Mode {
	case config.BackendModeMemory:
		logger.Info("initializing in-memory backend")

		inBroker := memoryqueue.NewBroker(cfg.Consumer.Queue, 10000, cfg.Consumer.BatchSize)
		outBroker := memoryqueue.NewBroker(cfg.Producer.Queue, 10000, cfg.Consumer.BatchSize)
		cleanupFuncs = append(cleanupFuncs,
			func() { _ = inBroker.Close() },
			func() { _ = outBroker.Close() },
		)

		source = inBroker
		transport = outBroker

	case config.BackendModeKafka:
		logger.Info("initializing kafka backend", "brokers", cfg.Kafka.Brokers)

		kafkaSource := kafkaqueue.NewSource(cfg, logger)
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaSource.Close() })
		source = kafkaSource

		kafkaTransport := kafkaqueue.NewTransport(&cfg.Kafka)
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaTransport.Close() })
		transport = kafkaTransport

	case config.BackendModeRedis:
		logger.Info("initializing redis streams backend", "addr", cfg.Redis.RedisAddr())

		backend, err := redisqueue.NewBackend(cfg, consumerName())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis backend: %w", err)
		}
		cleanupFuncs = append(cleanupFuncs, func() { _ = backend.Close() })

		source = backend
		transport = backend

	default:
		return nil, nil, fmt.Errorf("unsupported backend mode %q", cfg.Backend.Mode)
	}

	if cfg.Producer.Outbox {
		logger.Info("routing sends through postgres outbox", "database", cfg.Postgres.Database)

		outbox, err := postgresqueue.NewOutbox(context.Background(), &cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize outbox: %w", err)
		}
		if err := outbox.Migrate(context.Background()); err != nil {
			_ = outbox.Close()
			return nil, nil, fmt.Errorf("failed to migrate outbox: %w", err)
		}
		cleanupFuncs = append(cleanupFuncs, func() { _ = outbox.Close() })
		transport = outbox
	}

	transport = metrics.Transport(transport)

	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	return &dependencies{source: source, transport: transport}, cleanup, nil
}

// consumerName derives a stable-ish consumer name for Redis consumer
// groups.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		return "batchq-" + uuid.NewString()
	}
	return host
}

// initLogger builds the process logger from config.
func initLogger(cfg *config.LoggerConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
