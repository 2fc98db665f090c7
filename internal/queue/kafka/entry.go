package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"batchq/internal/queue"
)

// entry adapts one fetched Kafka message to queue.Entry. Kafka has no
// message id of its own, so the partition and offset stand in for one.
type entry struct {
	msg kafka.Message
}

func (e *entry) Field(name string) (any, error) {
	switch name {
	case queue.FieldID:
		return fmt.Sprintf("%d-%d", e.msg.Partition, e.msg.Offset), nil
	case queue.FieldTimestamp:
		return e.msg.Time, nil
	case queue.FieldBody:
		return json.RawMessage(e.msg.Value), nil
	default:
		return nil, fmt.Errorf("entry has no field %q", name)
	}
}
