// Package queue implements typed consumption of host-delivered message
// batches and typed production onto named queues. The host hands over a
// batch of opaque entries; this package decodes them lazily into Message
// values, isolating decode failures to the entry that caused them. The
// narrow Entry and Transport interfaces allow swapping host backends
// (Kafka, Redis Streams, in-memory) without changing business logic.
package queue

import (
	"context"
)

// Field names every host entry must expose.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
	FieldBody      = "body"
)

// Entry is one opaque, host-owned record within a batch. The core never
// inspects an entry beyond reading its named fields.
type Entry interface {
	// Field returns the raw value of the named field, or an error if the
	// field is not reachable on this entry.
	Field(name string) (any, error)
}

// Transport is the host-provided mechanism for submitting an encoded
// payload to a named queue. Submit blocks until the host acknowledges or
// rejects the submission. Implementations must be safe for concurrent use.
type Transport interface {
	Submit(ctx context.Context, queue string, payload []byte) error
}
