// Package redisstream provides Redis Streams implementations of the queue
// backend interfaces. Batches are read through a consumer group; retried
// batches stay in the group's pending list until redelivered.
package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"batchq/internal/config"
	"batchq/internal/queue"
)

// bodyKey is the stream field payloads are stored under.
const bodyKey = "body"

// Backend implements queue.Source and queue.Transport over Redis Streams.
type Backend struct {
	client    *redis.Client
	stream    string
	group     string
	consumer  string
	batchSize int
	maxWait   time.Duration
}

// NewBackend connects to Redis and ensures the consumer group exists on
// the inbound stream.
func NewBackend(cfg *config.Config, consumerName string) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	b := &Backend{
		client:    client,
		stream:    cfg.Consumer.Queue,
		group:     cfg.Consumer.Group,
		consumer:  consumerName,
		batchSize: cfg.Consumer.BatchSize,
		maxWait:   cfg.Consumer.MaxWait,
	}

	if err := b.ensureGroup(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return b, nil
}

// ensureGroup creates the consumer group, tolerating it already existing.
func (b *Backend) ensureGroup(ctx context.Context) error {
	err := b.client.XGroupCreateMkStream(ctx, b.stream, b.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Submit appends one payload to the named stream and waits for Redis to
// acknowledge the append.
func (b *Backend) Submit(ctx context.Context, queueName string, payload []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: queueName,
		Values: map[string]any{bodyKey: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to stream: %w", err)
	}
	return nil
}

// Fetch reads up to the batch size of new messages for this consumer.
// Acking a delivery XACKs its ids; retrying leaves them in the pending
// list, where a claim sweep or consumer restart picks them up again.
func (b *Backend) Fetch(ctx context.Context) (*queue.Delivery, error) {
	var msgs []redis.XMessage
	for len(msgs) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{b.stream, ">"},
			Count:    int64(b.batchSize),
			Block:    b.maxWait,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read from stream: %w", err)
		}
		if len(streams) > 0 {
			msgs = streams[0].Messages
		}
	}
	entries := make([]queue.Entry, len(msgs))
	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		entries[i] = &entry{id: msg.ID, values: msg.Values}
		ids[i] = msg.ID
	}

	return &queue.Delivery{
		Queue:   b.stream,
		Entries: entries,
		Ack: func(ctx context.Context) error {
			if err := b.client.XAck(ctx, b.stream, b.group, ids...).Err(); err != nil {
				return fmt.Errorf("failed to ack batch: %w", err)
			}
			return nil
		},
		Retry: func(context.Context) error {
			// Not acking is the retry: the ids stay in the pending entries
			// list and are redelivered when claimed.
			return nil
		},
	}, nil
}

// Close closes the Redis client.
func (b *Backend) Close() error {
	return b.client.Close()
}
