// Package metrics provides Prometheus metrics for batchq.
// It tracks batch consumption, per-message decode outcomes, and producer
// send latencies to help identify bottlenecks and failing queues.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "batchq"
)

// Consumption metrics track the batch processing pipeline.
var (
	// BatchesFetchedTotal counts batches handed over by the backend.
	BatchesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_fetched_total",
			Help:      "Total number of batches fetched from the backend",
		},
		[]string{"queue"},
	)

	// BatchesRetriedTotal counts batches marked for redelivery.
	BatchesRetriedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_retried_total",
			Help:      "Total number of batches sent back for redelivery",
		},
		[]string{"queue"},
	)

	// MessagesFetchedTotal counts raw entries delivered inside batches.
	MessagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_fetched_total",
			Help:      "Total number of entries delivered inside batches",
		},
		[]string{"queue"},
	)

	// MessagesDecodedTotal counts decode attempts by outcome.
	MessagesDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_decoded_total",
			Help:      "Total number of message decode attempts",
		},
		[]string{"queue", "result"},
	)
)

// Producer metrics track the outbound send path.
var (
	// MessagesSentTotal counts sends by outcome.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of messages submitted to the transport",
		},
		[]string{"queue", "result"},
	)

	// SendLatency measures time from submission to host acknowledgment.
	SendLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_latency_seconds",
			Help:      "Time from transport submission to acknowledgment in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)
