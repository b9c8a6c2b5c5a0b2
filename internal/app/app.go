package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/hazard"
	"github.com/corray333/backend-labs/storefront/internal/dal/payment/stripepayment"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/storefront/internal/metrics"
	"github.com/corray333/backend-labs/storefront/internal/otel"
	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
	"github.com/corray333/backend-labs/storefront/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/storefront/internal/service/services/ordersvc"
	grpctransport "github.com/corray333/backend-labs/storefront/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/storefront/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/storefront/internal/worker/outbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// App represents the storefront API.
type App struct {
	checkoutSvc    *checkoutsvc.CheckoutService
	orderSvc       *ordersvc.OrderService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitMqClient *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(viper.GetString("jaeger.service_name"))
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	orderPlacedQueue := viper.GetString("rabbitmq.order_placed_queue")
	reconciliationQueue := viper.GetString("rabbitmq.reconciliation_queue")
	rabbitMqClient.MustDeclareDurableQueues(orderPlacedQueue, reconciliationQueue)

	cur, err := currency.ParseCurrency(viper.GetString("payment.currency"))
	if err != nil {
		panic("invalid payment.currency: " + err.Error())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	paymentSvc := stripepayment.MustNewPaymentService(
		stripepayment.WithAPIKey(viper.GetString("payment.stripe_secret_key")),
	)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithCurrency(cur),
		checkoutsvc.WithPostgresClient(postgresClient),
		checkoutsvc.WithPaymentService(paymentSvc),
		checkoutsvc.WithHazardReporter(hazard.NewReporter(rabbitMqClient, reconciliationQueue)),
		checkoutsvc.WithMetrics(metrics.NewCheckoutMetrics(registry)),
		checkoutsvc.WithChargeDescription(viper.GetString("payment.description")),
		checkoutsvc.WithOrderPlacedQueue(orderPlacedQueue),
		checkoutsvc.WithTimeouts(
			viper.GetDuration("payment.timeout"),
			viper.GetDuration("checkout.persist_timeout"),
		),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient, cur.String()),
	)

	httpTransport := httptransport.NewHTTPTransport(checkoutSvc, orderSvc, registry)
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport(postgresClient, rabbitMqClient)

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitMqClient,
	)

	return &App{
		checkoutSvc:    checkoutSvc,
		orderSvc:       orderSvc,
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		outboxWorker:   outboxWorker,
		postgresClient: postgresClient,
		rabbitMqClient: rabbitMqClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	go a.grpcTransport.WatchDependencies(ctx)

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown stops the transports first so in-flight checkouts can
// finish persisting, then the worker and the connections.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
