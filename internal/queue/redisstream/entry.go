package redisstream

import (
	"fmt"
	"strconv"
	"strings"

	"batchq/internal/queue"
)

// entry adapts one stream message to queue.Entry. The stream id doubles
// as the message id, and its millisecond prefix as the timestamp.
type entry struct {
	id     string
	values map[string]any
}

func (e *entry) Field(name string) (any, error) {
	switch name {
	case queue.FieldID:
		return e.id, nil
	case queue.FieldTimestamp:
		ms, err := strconv.ParseInt(strings.SplitN(e.id, "-", 2)[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stream id %q has no timestamp: %w", e.id, err)
		}
		return ms, nil
	case queue.FieldBody:
		body, ok := e.values[bodyKey]
		if !ok {
			return nil, fmt.Errorf("stream message %q has no %q field", e.id, bodyKey)
		}
		return body, nil
	default:
		return nil, fmt.Errorf("entry has no field %q", name)
	}
}
