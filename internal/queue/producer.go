package queue

import (
	"context"
	"encoding/json"
)

// Producer sends typed messages to one named queue. It is a thin handle
// over a Transport: stateless, cheap, and safe to reuse across many sends.
// Sends issued concurrently from the same producer carry no ordering
// guarantee relative to each other unless the transport serializes them.
type Producer[T any] struct {
	queue     string
	transport Transport
}

// NewProducer creates a producer bound to the named queue.
func NewProducer[T any](queue string, transport Transport) *Producer[T] {
	return &Producer[T]{queue: queue, transport: transport}
}

// Queue returns the name of the queue this producer sends to.
func (p *Producer[T]) Queue() string { return p.queue }

// Send encodes v and submits it to the queue, blocking until the host
// acknowledges or rejects it. An encoding failure is returned as a
// SerializationError before any host call is made; a host rejection is
// returned as a TransportError. Send never retries; retry policy belongs
// to the caller, as does any deadline, via ctx.
func (p *Producer[T]) Send(ctx context.Context, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return &SerializationError{Err: err}
	}
	if err := p.transport.Submit(ctx, p.queue, payload); err != nil {
		return &TransportError{Queue: p.queue, Err: err}
	}
	return nil
}
