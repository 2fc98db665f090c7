// Package worker runs the batch processing loop: it fetches raw batches
// from a backend source, hands them to the application handler as typed
// batches, and reports the outcome back to the backend. This is the one
// place the batch retry marker takes effect: a handler error or a
// RetryAll call sends the whole batch back for redelivery, otherwise the
// batch is acknowledged. Per-message adjudication is not attempted.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"batchq/internal/metrics"
	"batchq/internal/queue"
)

// Handler processes one decoded batch. Returning an error requests
// redelivery of the whole batch, same as calling RetryAll on it.
type Handler[T any] func(ctx context.Context, batch *queue.Batch[T]) error

// Worker drives the fetch/handle/ack loop for one queue binding.
type Worker[T any] struct {
	source  queue.Source
	handler Handler[T]
	logger  *slog.Logger
}

// New creates a worker consuming from source and dispatching to handler.
func New[T any](source queue.Source, handler Handler[T], logger *slog.Logger) *Worker[T] {
	return &Worker[T]{
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Run fetches and processes batches until ctx is canceled or the source
// fails. A failing batch outcome report stops the loop; everything else
// is logged and the loop continues.
func (w *Worker[T]) Run(ctx context.Context) error {
	w.logger.Info("starting batch worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("batch worker stopping due to context cancellation")
			return ctx.Err()
		default:
		}

		delivery, err := w.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("failed to fetch batch", "error", err)
			continue
		}

		if err := w.process(ctx, delivery); err != nil {
			return err
		}
	}
}

// process runs the handler over one delivery and reports its outcome.
func (w *Worker[T]) process(ctx context.Context, delivery *queue.Delivery) error {
	metrics.BatchesFetchedTotal.WithLabelValues(delivery.Queue).Inc()
	metrics.MessagesFetchedTotal.WithLabelValues(delivery.Queue).Add(float64(len(delivery.Entries)))

	batch := queue.NewBatch[T](delivery.Queue, delivery.Entries)

	handlerErr := w.handler(ctx, batch)
	if handlerErr != nil {
		w.logger.Error("batch handler failed",
			"error", handlerErr,
			"queue", delivery.Queue,
			"size", batch.Len(),
		)
	}

	if handlerErr != nil || batch.RetryRequested() {
		metrics.BatchesRetriedTotal.WithLabelValues(delivery.Queue).Inc()
		if err := delivery.Retry(ctx); err != nil {
			return fmt.Errorf("failed to retry batch: %w", err)
		}
		return nil
	}

	if err := delivery.Ack(ctx); err != nil {
		return fmt.Errorf("failed to ack batch: %w", err)
	}
	return nil
}
