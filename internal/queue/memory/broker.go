// Package memory provides an in-memory implementation of the queue
// backend interfaces. This is useful for testing and development without
// external dependencies.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"batchq/internal/queue"
)

// drainWait bounds how long Fetch waits for extra messages after the
// first one, so partially filled batches are not held back indefinitely.
const drainWait = 10 * time.Millisecond

// Broker is an in-memory implementation of both queue.Transport and
// queue.Source for a single named queue. Messages are stored in a
// channel, allowing simple produce/consume within a process. Safe for
// concurrent use.
type Broker struct {
	name      string
	batchSize int
	messages  chan *Entry
	closed    bool
	mu        sync.RWMutex
}

// NewBroker creates an in-memory broker for the named queue. The buffer
// size determines how many messages can be queued before Submit blocks;
// batchSize caps how many entries one Fetch returns.
func NewBroker(name string, bufferSize, batchSize int) *Broker {
	return &Broker{
		name:      name,
		batchSize: batchSize,
		messages:  make(chan *Entry, bufferSize),
	}
}

// Submit enqueues a payload, assigning it a fresh message id and the
// current time. It blocks if the queue is full until space is available
// or ctx is canceled.
func (b *Broker) Submit(ctx context.Context, queueName string, payload []byte) error {
	if queueName != b.name {
		return ErrUnknownQueue
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrQueueClosed
	}
	b.mu.RUnlock()

	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(payload),
	}

	select {
	case b.messages <- entry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch blocks until at least one message is available, then drains up to
// the batch size. Retrying a delivery puts its entries back at the tail
// of the queue.
func (b *Broker) Fetch(ctx context.Context) (*queue.Delivery, error) {
	var entries []queue.Entry

	select {
	case entry, ok := <-b.messages:
		if !ok {
			return nil, ErrQueueClosed
		}
		entries = append(entries, entry)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timer := time.NewTimer(drainWait)
	defer timer.Stop()

drain:
	for len(entries) < b.batchSize {
		select {
		case entry, ok := <-b.messages:
			if !ok {
				break drain
			}
			entries = append(entries, entry)
		case <-timer.C:
			break drain
		case <-ctx.Done():
			break drain
		}
	}

	return &queue.Delivery{
		Queue:   b.name,
		Entries: entries,
		Ack: func(context.Context) error {
			return nil
		},
		Retry: func(ctx context.Context) error {
			return b.requeue(ctx, entries)
		},
	}, nil
}

// requeue puts a retried delivery's entries back on the queue, keeping
// their ids and timestamps.
func (b *Broker) requeue(ctx context.Context, entries []queue.Entry) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrQueueClosed
	}
	b.mu.RUnlock()

	for _, e := range entries {
		select {
		case b.messages <- e.(*Entry):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Len returns the current number of queued messages. Useful for tests.
func (b *Broker) Len() int {
	return len(b.messages)
}

// Close shuts down the broker. Submitting or fetching afterwards fails
// with ErrQueueClosed.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.messages)
	return nil
}
