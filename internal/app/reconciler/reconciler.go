package reconciler

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/storefront/internal/otel"
	"github.com/corray333/backend-labs/storefront/internal/service/services/reconcilesvc"
	"github.com/corray333/backend-labs/storefront/internal/transport/consumer"
	"github.com/spf13/viper"
)

// App drains the reconciliation queue into Postgres.
type App struct {
	consumerTransp *consumer.Consumer
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new reconciler.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(viper.GetString("jaeger.service_name") + "-reconciler")
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	queue := viper.GetString("rabbitmq.reconciliation_queue")
	rabbitMqClient.MustDeclareDurableQueues(queue)

	reconcileSvc := reconcilesvc.MustNewReconcileService(
		reconcilesvc.WithPostgresClient(postgresClient),
	)

	return &App{
		consumerTransp: consumer.NewConsumer(rabbitMqClient, reconcileSvc, queue),
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run consumes until an interrupt signal arrives.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	a.gracefulShutdown()
}

func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}

	slog.Info("Reconciler shutdown complete")
}
