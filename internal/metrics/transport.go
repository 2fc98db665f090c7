package metrics

import (
	"context"
	"time"

	"batchq/internal/queue"
)

// instrumentedTransport wraps a queue.Transport with send metrics.
type instrumentedTransport struct {
	next queue.Transport
}

// Transport returns a queue.Transport that records send counts and
// latencies around the wrapped transport. Errors pass through unchanged.
func Transport(next queue.Transport) queue.Transport {
	return &instrumentedTransport{next: next}
}

func (t *instrumentedTransport) Submit(ctx context.Context, queueName string, payload []byte) error {
	start := time.Now()
	err := t.next.Submit(ctx, queueName, payload)
	SendLatency.Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	MessagesSentTotal.WithLabelValues(queueName, result).Inc()

	return err
}
