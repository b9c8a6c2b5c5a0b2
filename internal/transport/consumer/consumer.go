package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// service represents the service layer interface.
type service interface {
	RecordHazard(ctx context.Context, h reconciliation.Hazard) error
}

// source delivers messages of a queue.
type source interface {
	Consume(cfg rabbitmq.ConsumeConfig) (<-chan amqp.Delivery, error)
}

// Consumer reads hazards from the reconciliation queue.
type Consumer struct {
	client      source
	service     service
	queue       string
	concurrency int
	stop        chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
}

// NewConsumer creates a new Consumer for queue.
func NewConsumer(client source, service service, queue string) *Consumer {
	if queue == "" {
		panic("reconciliation queue is not set in config")
	}

	concurrency := viper.GetInt("rabbitmq.consumer.concurrency")
	if concurrency <= 0 {
		concurrency = 50
	}

	return &Consumer{
		client:      client,
		service:     service,
		queue:       queue,
		concurrency: concurrency,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run consumes messages until ctx is done, Shutdown is called or the
// channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "storefront-reconciler"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue,
		Consumer: consumerTag,
		Prefetch: c.concurrency,
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", c.queue, "consumer_tag", consumerTag)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	go func() {
		defer close(c.done)
		for {
			select {
			case <-ctx.Done():
				slog.Info("Consumer context done", "error", ctx.Err())

				return
			case <-c.stop:
				slog.Info("Stopping consumer")

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")

					return
				}

				g.Go(func() error {
					c.processMessage(gctx, msg)

					return nil
				})
			}
		}
	}()

	<-c.done

	return g.Wait()
}

// processMessage records one hazard. Malformed and invalid messages are
// dropped, storage failures are requeued.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	var h reconciliation.Hazard
	if err := json.Unmarshal(msg.Body, &h); err != nil {
		slog.Error("Failed to unmarshal hazard", "error", err, "delivery_tag", msg.DeliveryTag)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}

	if err := c.service.RecordHazard(ctx, h); err != nil {
		requeue := !errs.Is(err, errs.KindValidation)
		slog.Error("Failed to record hazard",
			"error", err,
			"idempotency_key", h.IdempotencyKey,
			"requeue", requeue)
		if err := msg.Nack(false, requeue); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}

// Shutdown stops reading new messages and waits for the loop to exit.
// Calling it more than once is safe.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	c.stopOnce.Do(func() { close(c.stop) })

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
