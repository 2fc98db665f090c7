package redisstream

import (
	"testing"

	"batchq/internal/queue"
)

func TestEntry_Fields(t *testing.T) {
	e := &entry{
		id:     "1748779200000-0",
		values: map[string]any{bodyKey: `{"x":1}`},
	}

	id, err := e.Field(queue.FieldID)
	if err != nil || id != "1748779200000-0" {
		t.Errorf("Field(id) = (%v, %v)", id, err)
	}

	ts, err := e.Field(queue.FieldTimestamp)
	if err != nil {
		t.Fatalf("Field(timestamp) error: %v", err)
	}
	if ts != int64(1748779200000) {
		t.Errorf("Field(timestamp) = %v, want 1748779200000", ts)
	}

	body, err := e.Field(queue.FieldBody)
	if err != nil || body != `{"x":1}` {
		t.Errorf("Field(body) = (%v, %v)", body, err)
	}
}

func TestEntry_MissingBody(t *testing.T) {
	e := &entry{id: "1-0", values: map[string]any{}}
	if _, err := e.Field(queue.FieldBody); err == nil {
		t.Error("Field(body) succeeded, want error")
	}
}

func TestEntry_MalformedStreamID(t *testing.T) {
	e := &entry{id: "bogus", values: map[string]any{}}
	if _, err := e.Field(queue.FieldTimestamp); err == nil {
		t.Error("Field(timestamp) succeeded, want error")
	}
}
