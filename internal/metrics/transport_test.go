package metrics

import (
	"context"
	"errors"
	"testing"
)

type stubTransport struct {
	err   error
	calls int
}

func (t *stubTransport) Submit(context.Context, string, []byte) error {
	t.calls++
	return t.err
}

func TestTransport_PassesThroughResult(t *testing.T) {
	stub := &stubTransport{}
	wrapped := Transport(stub)

	if err := wrapped.Submit(context.Background(), "q", []byte(`{}`)); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("underlying transport called %d times, want 1", stub.calls)
	}

	rejection := errors.New("queue full")
	stub.err = rejection
	if err := wrapped.Submit(context.Background(), "q", []byte(`{}`)); !errors.Is(err, rejection) {
		t.Errorf("Submit() error = %v, want the underlying rejection", err)
	}
}
