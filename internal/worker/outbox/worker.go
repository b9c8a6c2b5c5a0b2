package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/spf13/viper"
)

type store interface {
	Due(ctx context.Context, now time.Time, limit int) ([]outbox.Message, error)
	Delete(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, msg outbox.Message) error
}

type publisher interface {
	Publish(queue, contentType string, body []byte) error
}

// Worker relays committed order events to RabbitMQ.
type Worker struct {
	store        store
	publisher    publisher
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
}

// NewWorker creates a relay reading rabbitmq.outbox.* settings.
func NewWorker(store store, publisher publisher) *Worker {
	pollInterval := time.Duration(viper.GetInt("rabbitmq.outbox.poll_interval_seconds")) * time.Second
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Worker{
		store:        store,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// Start relays batches until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.relayBatch(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// relayBatch publishes the due messages and returns how many were delivered.
func (w *Worker) relayBatch(ctx context.Context) int {
	messages, err := w.store.Due(ctx, w.now(), w.batchSize)
	if err != nil {
		slog.Error("Failed to load due outbox messages", "error", err)

		return 0
	}

	delivered := 0
	for _, msg := range messages {
		if w.relay(ctx, msg) {
			delivered++
		}
	}

	if len(messages) > 0 {
		slog.Info("Outbox batch relayed", "due", len(messages), "delivered", delivered)
	}

	return delivered
}

func (w *Worker) relay(ctx context.Context, msg outbox.Message) bool {
	if err := w.publisher.Publish(msg.QueueName, msg.ContentType, msg.Payload); err != nil {
		msg.Fail(err, w.now())

		level := slog.LevelWarn
		if msg.Exhausted() {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "Failed to publish outbox message",
			"outbox_id", msg.ID,
			"event_type", msg.EventType,
			"aggregate_id", msg.AggregateID,
			"retry_count", msg.RetryCount,
			"next_retry", msg.NextRetryAt,
			"error", err,
		)

		if err := w.store.Reschedule(ctx, msg); err != nil {
			slog.Error("Failed to reschedule outbox message", "outbox_id", msg.ID, "error", err)
		}

		return false
	}

	// A failed delete means the event is published again on the next poll.
	if err := w.store.Delete(ctx, msg.ID); err != nil {
		slog.Error("Failed to delete relayed outbox message", "outbox_id", msg.ID, "error", err)

		return false
	}

	return true
}
