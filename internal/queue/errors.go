package queue

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when an entry has no id field or its id is not
// a string. Check for it with errors.Is.
var ErrMissingID = errors.New("message id is missing or not a string")

// ErrDone is returned by Iterator.Next and Iterator.NextBack once the
// iterator is exhausted. It never wraps another error.
var ErrDone = errors.New("no more messages in batch")

// FieldAccessError reports that a required field other than the id was
// structurally unreachable on an entry. It signals a host contract
// violation rather than a malformed message.
type FieldAccessError struct {
	Field string
	Err   error
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("cannot read field %q: %v", e.Field, e.Err)
}

func (e *FieldAccessError) Unwrap() error { return e.Err }

// DeserializationError reports that an entry's body could not be decoded
// into the requested message type.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("cannot deserialize message body: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// SerializationError reports that an outgoing value could not be encoded.
// Send returns it without contacting the host.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize message: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// TransportError reports that the host rejected or failed a submitted
// message.
type TransportError struct {
	Queue string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("queue %q rejected message: %v", e.Queue, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
