package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/corray333/backend-labs/storefront/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	SetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/storefront")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("storefront")
	viper.SetEnvKeyReplacer(newKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}
	SetupLogger()
}

// SetDefaults registers a default for every key the services read.
func SetDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.read_header_timeout", 5*time.Second)
	viper.SetDefault("server.http.admin_token", "")
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Content-Type", "X-User-Id", "X-Admin-Token", "Idempotency-Key"})
	viper.SetDefault("server.http.cors.exposed_headers", []string{"X-Request-Id"})
	viper.SetDefault("server.http.cors.allow_credentials", false)
	viper.SetDefault("server.http.cors.max_age", 300)

	viper.SetDefault("server.grpc.port", "9090")
	viper.SetDefault("server.grpc.health_check_interval", 10*time.Second)
	viper.SetDefault("server.grpc.keepalive.max_connection_idle", 15)
	viper.SetDefault("server.grpc.keepalive.max_connection_age", 30)
	viper.SetDefault("server.grpc.keepalive.max_connection_age_grace", 5)
	viper.SetDefault("server.grpc.keepalive.time", 7200)
	viper.SetDefault("server.grpc.keepalive.timeout", 20)
	viper.SetDefault("server.grpc.keepalive.min_time", 5)
	viper.SetDefault("server.grpc.keepalive.permit_without_stream", false)

	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.user", "storefront")
	viper.SetDefault("postgres.password", "")
	viper.SetDefault("postgres.db", "storefront")
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("postgres.migrate", true)

	viper.SetDefault("rabbitmq.host", "rabbitmq")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.vhost", "/")
	viper.SetDefault("rabbitmq.order_placed_queue", "order.placed")
	viper.SetDefault("rabbitmq.reconciliation_queue", "checkout.reconciliation")
	viper.SetDefault("rabbitmq.outbox.poll_interval_seconds", 10)
	viper.SetDefault("rabbitmq.outbox.batch_size", 100)
	viper.SetDefault("rabbitmq.consumer.concurrency", 50)

	viper.SetDefault("payment.stripe_secret_key", "")
	viper.SetDefault("payment.currency", "usd")
	viper.SetDefault("payment.description", "Charged From Ecommerce")
	viper.SetDefault("payment.timeout", 15*time.Second)

	viper.SetDefault("checkout.persist_timeout", 10*time.Second)

	viper.SetDefault("jaeger.endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("jaeger.service_name", "storefront")
}

func newKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
