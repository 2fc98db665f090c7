package queue

import (
	"context"
)

// Delivery is one raw batch handed over by a host backend, before any
// decoding. Ack and Retry report the batch outcome back to the host;
// exactly one of them is called, after the handler returns.
type Delivery struct {
	// Queue is the name of the queue the batch was delivered from.
	Queue string

	// Entries holds the batch's records in host delivery order.
	Entries []Entry

	// Ack marks the batch as processed.
	Ack func(ctx context.Context) error

	// Retry asks the host to redeliver the whole batch. How and when
	// redelivery happens is backend policy.
	Retry func(ctx context.Context) error
}

// Source produces raw batches from a host backend.
type Source interface {
	// Fetch blocks until a batch is available or ctx is done.
	Fetch(ctx context.Context) (*Delivery, error)
}
