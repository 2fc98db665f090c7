package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeEntry is a map-backed host entry for tests.
type fakeEntry struct {
	fields map[string]any
}

func (e *fakeEntry) Field(name string) (any, error) {
	v, ok := e.fields[name]
	if !ok {
		return nil, fmt.Errorf("no field %q", name)
	}
	return v, nil
}

// payload is the message body type used throughout the tests.
type payload struct {
	X int `json:"x"`
}

// makeEntries builds n well-formed entries with ids m0..m(n-1) and bodies
// {"x": 0..n-1}.
func makeEntries(n int) []Entry {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]Entry, n)
	for i := range n {
		entries[i] = &fakeEntry{fields: map[string]any{
			FieldID:        fmt.Sprintf("m%d", i),
			FieldTimestamp: base.Add(time.Duration(i) * time.Second),
			FieldBody:      json.RawMessage(fmt.Sprintf(`{"x":%d}`, i)),
		}}
	}
	return entries
}

func TestIterator_ForwardOrder(t *testing.T) {
	batch := NewBatch[payload]("orders", makeEntries(5))
	it := batch.Iter()

	for i := 0; i < 5; i++ {
		msg, err := it.Next()
		if err != nil {
			t.Fatalf("Next() error at %d: %v", i, err)
		}
		if want := fmt.Sprintf("m%d", i); msg.ID != want {
			t.Errorf("message %d: ID = %q, want %q", i, msg.ID, want)
		}
		if msg.Body.X != i {
			t.Errorf("message %d: Body.X = %d, want %d", i, msg.Body.X, i)
		}
	}

	if _, err := it.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Next() after exhaustion = %v, want ErrDone", err)
	}
	// Exhausted iterators stay exhausted.
	if _, err := it.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("second Next() after exhaustion = %v, want ErrDone", err)
	}
}

func TestIterator_BackwardOrder(t *testing.T) {
	batch := NewBatch[payload]("orders", makeEntries(5))
	it := batch.Iter()

	for i := 4; i >= 0; i-- {
		msg, err := it.NextBack()
		if err != nil {
			t.Fatalf("NextBack() error at %d: %v", i, err)
		}
		if want := fmt.Sprintf("m%d", i); msg.ID != want {
			t.Errorf("NextBack: ID = %q, want %q", msg.ID, want)
		}
	}

	if _, err := it.NextBack(); !errors.Is(err, ErrDone) {
		t.Errorf("NextBack() after exhaustion = %v, want ErrDone", err)
	}
}

func TestIterator_InterleavedStepsYieldEachEntryOnce(t *testing.T) {
	const n = 6
	batch := NewBatch[payload]("orders", makeEntries(n))
	it := batch.Iter()

	seen := make(map[string]bool)
	steps := 0
	for {
		var (
			msg Message[payload]
			err error
		)
		if steps%2 == 0 {
			msg, err = it.Next()
		} else {
			msg, err = it.NextBack()
		}
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			t.Fatalf("step %d: %v", steps, err)
		}
		if seen[msg.ID] {
			t.Fatalf("message %q yielded twice", msg.ID)
		}
		seen[msg.ID] = true
		steps++
	}

	if steps != n {
		t.Errorf("total steps = %d, want %d", steps, n)
	}
	if len(seen) != n {
		t.Errorf("distinct messages = %d, want %d", len(seen), n)
	}
	if _, err := it.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Next() after interleaved exhaustion = %v, want ErrDone", err)
	}
}

func TestIterator_Remaining(t *testing.T) {
	batch := NewBatch[payload]("orders", makeEntries(4))
	it := batch.Iter()

	if got := it.Remaining(); got != 4 {
		t.Fatalf("Remaining() = %d, want 4", got)
	}
	_, _ = it.Next()
	if got := it.Remaining(); got != 3 {
		t.Errorf("Remaining() after Next = %d, want 3", got)
	}
	_, _ = it.NextBack()
	if got := it.Remaining(); got != 2 {
		t.Errorf("Remaining() after NextBack = %d, want 2", got)
	}
	_, _ = it.Next()
	_, _ = it.Next()
	if got := it.Remaining(); got != 0 {
		t.Errorf("Remaining() at exhaustion = %d, want 0", got)
	}
}

func TestIterator_BadBodyDoesNotStopIteration(t *testing.T) {
	entries := makeEntries(3)
	entries[1] = &fakeEntry{fields: map[string]any{
		FieldID:        "m1",
		FieldTimestamp: time.Now(),
		FieldBody:      json.RawMessage(`"not-an-x"`),
	}}
	it := NewBatch[payload]("orders", entries).Iter()

	if msg, err := it.Next(); err != nil || msg.ID != "m0" {
		t.Fatalf("first Next() = (%q, %v), want m0", msg.ID, err)
	}

	_, err := it.Next()
	var derr *DeserializationError
	if !errors.As(err, &derr) {
		t.Fatalf("second Next() error = %v, want DeserializationError", err)
	}

	// The bad slot must not hide the rest of the batch.
	if msg, err := it.Next(); err != nil || msg.ID != "m2" {
		t.Fatalf("third Next() = (%q, %v), want m2", msg.ID, err)
	}
	if _, err := it.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Next() after exhaustion = %v, want ErrDone", err)
	}
}

func TestIterator_BadBodyBackward(t *testing.T) {
	// Batch [good, bad] decodes as [ok, err] forward and [err, ok]
	// backward.
	entries := makeEntries(1)
	entries = append(entries, &fakeEntry{fields: map[string]any{
		FieldID:        "m1",
		FieldTimestamp: time.Now(),
		FieldBody:      json.RawMessage(`"not-an-x"`),
	}})
	it := NewBatch[payload]("orders", entries).Iter()

	_, err := it.NextBack()
	var derr *DeserializationError
	if !errors.As(err, &derr) {
		t.Fatalf("NextBack() error = %v, want DeserializationError", err)
	}
	if msg, err := it.NextBack(); err != nil || msg.ID != "m0" {
		t.Fatalf("second NextBack() = (%q, %v), want m0", msg.ID, err)
	}
}

func TestIterator_MissingID(t *testing.T) {
	entries := makeEntries(2)
	entries = append(entries, &fakeEntry{fields: map[string]any{
		FieldTimestamp: time.Now(),
		FieldBody:      json.RawMessage(`{"x":9}`),
	}})
	it := NewBatch[payload]("orders", entries).Iter()

	_, _ = it.Next()
	_, _ = it.Next()
	if _, err := it.Next(); !errors.Is(err, ErrMissingID) {
		t.Errorf("Next() error = %v, want ErrMissingID", err)
	}
}

func TestIterator_NonStringID(t *testing.T) {
	it := NewBatch[payload]("orders", []Entry{&fakeEntry{fields: map[string]any{
		FieldID:        42,
		FieldTimestamp: time.Now(),
		FieldBody:      json.RawMessage(`{"x":1}`),
	}}}).Iter()

	if _, err := it.Next(); !errors.Is(err, ErrMissingID) {
		t.Errorf("Next() error = %v, want ErrMissingID", err)
	}
}

func TestIterator_UnreachableFieldIsAccessError(t *testing.T) {
	// A missing timestamp is a host contract violation, not a malformed
	// message, and must be distinguishable from the id and body cases.
	it := NewBatch[payload]("orders", []Entry{&fakeEntry{fields: map[string]any{
		FieldID:   "m0",
		FieldBody: json.RawMessage(`{"x":1}`),
	}}}).Iter()

	_, err := it.Next()
	var ferr *FieldAccessError
	if !errors.As(err, &ferr) {
		t.Fatalf("Next() error = %v, want FieldAccessError", err)
	}
	if ferr.Field != FieldTimestamp {
		t.Errorf("FieldAccessError.Field = %q, want %q", ferr.Field, FieldTimestamp)
	}
	if errors.Is(err, ErrMissingID) {
		t.Error("FieldAccessError must not match ErrMissingID")
	}
}

func TestIterator_TimestampForms(t *testing.T) {
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := map[string]any{
		"native": want,
		"millis": want.UnixMilli(),
		"string": want.Format(time.RFC3339Nano),
	}

	for name, ts := range forms {
		t.Run(name, func(t *testing.T) {
			it := NewBatch[payload]("orders", []Entry{&fakeEntry{fields: map[string]any{
				FieldID:        "m0",
				FieldTimestamp: ts,
				FieldBody:      json.RawMessage(`{"x":1}`),
			}}}).Iter()

			msg, err := it.Next()
			if err != nil {
				t.Fatalf("Next() error: %v", err)
			}
			if !msg.Timestamp.Equal(want) {
				t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
			}
		})
	}
}

func TestIterator_All(t *testing.T) {
	batch := NewBatch[payload]("orders", makeEntries(3))

	var ids []string
	for msg, err := range batch.Iter().All() {
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		ids = append(ids, msg.ID)
	}
	if len(ids) != 3 || ids[0] != "m0" || ids[2] != "m2" {
		t.Errorf("All() ids = %v, want [m0 m1 m2]", ids)
	}

	// Early break must stop the sequence.
	count := 0
	for range batch.Iter().All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("All() with break yielded %d items, want 2", count)
	}
}
