package queue

import (
	"sync/atomic"
)

// Batch is one host-delivered batch of messages from a named queue. The
// entry sequence is read-only for the batch's lifetime; the only mutable
// state is the retry marker. The type parameter pins the message type
// iterators decode to; no value of T is stored.
type Batch[T any] struct {
	queue   string
	entries []Entry
	retry   atomic.Bool
}

// NewBatch wraps a host-delivered entry sequence. Entries are kept in
// whatever order the host delivered them; no further ordering is promised.
func NewBatch[T any](queue string, entries []Entry) *Batch[T] {
	return &Batch[T]{queue: queue, entries: entries}
}

// Queue returns the name of the queue this batch was delivered from.
func (b *Batch[T]) Queue() string { return b.queue }

// Len returns the number of entries in the batch.
func (b *Batch[T]) Len() int { return len(b.entries) }

// RetryAll marks every message in the batch for redelivery. The marker is
// advisory: it takes effect only after the batch handler returns, when the
// host binding consults it. Calling RetryAll more than once is the same as
// calling it once.
func (b *Batch[T]) RetryAll() { b.retry.Store(true) }

// RetryRequested reports whether RetryAll has been called. Consulted by
// the host binding after the handler returns.
func (b *Batch[T]) RetryRequested() bool { return b.retry.Load() }

// Iter returns a fresh iterator over the full batch, decoding entries
// lazily into Message[T] values. Iterators created from the same batch are
// independent: each owns its own cursor and only reads the shared,
// immutable entry sequence, so they may be used concurrently.
func (b *Batch[T]) Iter() *Iterator[T] {
	return &Iterator[T]{entries: b.entries, low: 0, high: len(b.entries)}
}
