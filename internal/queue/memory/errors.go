package memory

import "errors"

// ErrQueueClosed is returned when using a closed broker.
var ErrQueueClosed = errors.New("queue is closed")

// ErrUnknownQueue is returned when submitting to a queue name the broker
// does not serve.
var ErrUnknownQueue = errors.New("unknown queue")
