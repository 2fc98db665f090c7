package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is one decoded queue message. Immutable once constructed.
type Message[T any] struct {
	// ID is the host-assigned message identifier.
	ID string

	// Timestamp is when the host enqueued the message.
	Timestamp time.Time

	// Body is the message payload decoded into the caller's type.
	Body T
}

// decodeEntry reads the three named fields off a host entry and builds a
// Message. It is a pure transform: no field is validated beyond what is
// needed to convert it, and any timestamp the host supplies is accepted
// as-is.
func decodeEntry[T any](e Entry) (Message[T], error) {
	var msg Message[T]

	raw, err := e.Field(FieldTimestamp)
	if err != nil {
		return msg, &FieldAccessError{Field: FieldTimestamp, Err: err}
	}
	ts, err := coerceTime(raw)
	if err != nil {
		return msg, &FieldAccessError{Field: FieldTimestamp, Err: err}
	}

	raw, err = e.Field(FieldID)
	if err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMissingID, err)
	}
	id, ok := raw.(string)
	if !ok {
		return msg, fmt.Errorf("%w: got %T", ErrMissingID, raw)
	}

	raw, err = e.Field(FieldBody)
	if err != nil {
		return msg, &FieldAccessError{Field: FieldBody, Err: err}
	}
	payload, err := coercePayload(raw)
	if err != nil {
		return msg, &FieldAccessError{Field: FieldBody, Err: err}
	}

	var body T
	if err := json.Unmarshal(payload, &body); err != nil {
		return msg, &DeserializationError{Err: err}
	}

	msg.ID = id
	msg.Timestamp = ts
	msg.Body = body
	return msg, nil
}

// coerceTime converts the host's timestamp representation to a time.Time.
// Hosts deliver either a native time value, a unix-millisecond number, or
// an RFC 3339 string.
func coerceTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case int64:
		return time.UnixMilli(t), nil
	case float64:
		return time.UnixMilli(int64(t)), nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp not RFC 3339: %w", err)
		}
		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("timestamp has unsupported type %T", v)
	}
}

// coercePayload normalizes the host's serialized body value to raw bytes
// for the deserializer.
func coercePayload(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, fmt.Errorf("body has unsupported type %T", v)
	}
}
