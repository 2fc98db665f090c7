// Package kafka provides Kafka-based implementations of the queue backend
// interfaces.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"batchq/internal/config"
)

// Transport implements queue.Transport using Kafka. The queue name passed
// to Submit selects the topic, so one transport serves every producer.
type Transport struct {
	writer *kafka.Writer
}

// NewTransport creates a new Kafka transport.
func NewTransport(cfg *config.KafkaConfig) *Transport {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Transport{
		writer: writer,
	}
}

// Submit writes one payload to the named topic and waits for the broker's
// acknowledgment.
func (t *Transport) Submit(ctx context.Context, queueName string, payload []byte) error {
	msg := kafka.Message{
		Topic: queueName,
		Value: payload,
	}

	if err := t.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer.
func (t *Transport) Close() error {
	if t.writer != nil {
		return t.writer.Close()
	}
	return nil
}
