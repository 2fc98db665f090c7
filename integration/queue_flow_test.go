package integration

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"batchq/internal/queue"
	"batchq/internal/queue/memory"
	"batchq/internal/worker"
)

type order struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

var _ = Describe("Queue flow", func() {
	var (
		broker   *memory.Broker
		producer *queue.Producer[order]
		logger   *slog.Logger
		ctx      context.Context
		cancel   context.CancelFunc
	)

	BeforeEach(func() {
		broker = memory.NewBroker("orders", 1000, 10)
		producer = queue.NewProducer[order]("orders", broker)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
		Expect(broker.Close()).To(Succeed())
	})

	It("delivers produced messages to the batch handler in order", func() {
		received := make(chan queue.Message[order], 10)
		handler := func(ctx context.Context, batch *queue.Batch[order]) error {
			for msg, err := range batch.Iter().All() {
				Expect(err).NotTo(HaveOccurred())
				received <- msg
			}
			return nil
		}

		go func() {
			_ = worker.New(broker, handler, logger).Run(ctx)
		}()

		orders := []order{
			{SKU: "widget", Quantity: 1},
			{SKU: "gadget", Quantity: 2},
			{SKU: "doodad", Quantity: 3},
		}
		for _, o := range orders {
			Expect(producer.Send(ctx, o)).To(Succeed())
		}

		for _, want := range orders {
			var msg queue.Message[order]
			Eventually(received).Should(Receive(&msg))
			Expect(msg.Body).To(Equal(want))
			Expect(msg.ID).NotTo(BeEmpty())
			Expect(msg.Timestamp).NotTo(BeZero())
		}
	})

	It("redelivers the whole batch after RetryAll", func() {
		var attempts atomic.Int32
		received := make(chan string, 10)
		handler := func(ctx context.Context, batch *queue.Batch[order]) error {
			if attempts.Add(1) == 1 {
				batch.RetryAll()
				return nil
			}
			for msg, err := range batch.Iter().All() {
				Expect(err).NotTo(HaveOccurred())
				received <- msg.Body.SKU
			}
			return nil
		}

		go func() {
			_ = worker.New(broker, handler, logger).Run(ctx)
		}()

		Expect(producer.Send(ctx, order{SKU: "widget", Quantity: 1})).To(Succeed())

		Eventually(received).Should(Receive(Equal("widget")))
		Expect(attempts.Load()).To(BeNumerically(">=", 2))
	})

	It("isolates undecodable messages from the rest of the batch", func() {
		good := make(chan string, 10)
		bad := make(chan error, 10)
		handler := func(ctx context.Context, batch *queue.Batch[order]) error {
			for msg, err := range batch.Iter().All() {
				if err != nil {
					bad <- err
					continue
				}
				good <- msg.Body.SKU
			}
			return nil
		}

		go func() {
			_ = worker.New(broker, handler, logger).Run(ctx)
		}()

		Expect(producer.Send(ctx, order{SKU: "widget", Quantity: 1})).To(Succeed())
		// Bypass the producer to enqueue a payload that is not an order.
		Expect(broker.Submit(ctx, "orders", []byte(`"not-an-order"`))).To(Succeed())
		Expect(producer.Send(ctx, order{SKU: "gadget", Quantity: 2})).To(Succeed())

		Eventually(good).Should(Receive(Equal("widget")))
		Eventually(good).Should(Receive(Equal("gadget")))

		var decodeErr error
		Eventually(bad).Should(Receive(&decodeErr))
		var derr *queue.DeserializationError
		Expect(errors.As(decodeErr, &derr)).To(BeTrue())
	})
})
