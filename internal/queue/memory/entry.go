package memory

import (
	"encoding/json"
	"fmt"
	"time"

	"batchq/internal/queue"
)

// Entry is the in-memory representation of one queued message. It
// implements queue.Entry so the broker can stand in for a real host
// backend.
type Entry struct {
	ID        string
	Timestamp time.Time
	Payload   json.RawMessage
}

// Field returns the named field's value.
func (e *Entry) Field(name string) (any, error) {
	switch name {
	case queue.FieldID:
		return e.ID, nil
	case queue.FieldTimestamp:
		return e.Timestamp, nil
	case queue.FieldBody:
		return e.Payload, nil
	default:
		return nil, fmt.Errorf("entry has no field %q", name)
	}
}
