package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"batchq/internal/config"
	"batchq/internal/queue"
)

// Source implements queue.Source over a Kafka consumer group. One Fetch
// collects up to the configured batch size of messages from the topic.
type Source struct {
	reader    *kafka.Reader
	batchSize int
	maxWait   time.Duration
	logger    *slog.Logger
}

// NewSource creates a Kafka-backed batch source for the consumer queue.
func NewSource(cfg *config.Config, logger *slog.Logger) *Source {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Consumer.Queue,
		GroupID:  cfg.Consumer.Group,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Source{
		reader:    reader,
		batchSize: cfg.Consumer.BatchSize,
		maxWait:   cfg.Consumer.MaxWait,
		logger:    logger,
	}
}

// Fetch blocks for the first message, then keeps collecting until the
// batch is full or maxWait elapses. Acking a delivery commits its offsets;
// retrying leaves them uncommitted so the group redelivers the messages.
func (s *Source) Fetch(ctx context.Context) (*queue.Delivery, error) {
	first, err := s.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}

	msgs := []kafka.Message{first}

	fillCtx, cancel := context.WithTimeout(ctx, s.maxWait)
	defer cancel()

	for len(msgs) < s.batchSize {
		msg, err := s.reader.FetchMessage(fillCtx)
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				s.logger.Error("failed to fill batch", "error", err)
			}
			break
		}
		msgs = append(msgs, msg)
	}

	entries := make([]queue.Entry, len(msgs))
	for i := range msgs {
		entries[i] = &entry{msg: msgs[i]}
	}

	return &queue.Delivery{
		Queue:   s.reader.Config().Topic,
		Entries: entries,
		Ack: func(ctx context.Context) error {
			if err := s.reader.CommitMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			return nil
		},
		Retry: func(context.Context) error {
			// Leaving the offsets uncommitted is the retry: the consumer
			// group redelivers the batch after a rebalance or restart.
			return nil
		},
	}, nil
}

// Close closes the Kafka reader.
func (s *Source) Close() error {
	if s.reader != nil {
		return s.reader.Close()
	}
	return nil
}
