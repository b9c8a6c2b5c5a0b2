package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// ErrClosed is returned by Ping once the broker connection is gone.
var ErrClosed = errors.New("rabbitmq connection is closed")

// Client holds one connection and one channel. Publishing is serialized
// because an amqp channel is not safe for concurrent use.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// URI builds the broker address from rabbitmq.* settings.
func URI() string {
	return amqp.URI{
		Scheme:   "amqp",
		Host:     viper.GetString("rabbitmq.host"),
		Port:     viper.GetInt("rabbitmq.port"),
		Username: viper.GetString("rabbitmq.user"),
		Password: viper.GetString("rabbitmq.password"),
		Vhost:    viper.GetString("rabbitmq.vhost"),
	}.String()
}

// MustNewClient dials the broker and opens a channel or panics.
func MustNewClient() *Client {
	conn, err := amqp.Dial(URI())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		panic(fmt.Sprintf("Failed to open a channel: %v", err))
	}

	slog.Info("RabbitMQ connected",
		"host", viper.GetString("rabbitmq.host"),
		"port", viper.GetInt("rabbitmq.port"),
	)

	return &Client{
		conn:    conn,
		channel: channel,
	}
}

// Ping reports whether the connection is still open.
func (r *Client) Ping(context.Context) error {
	if r.conn == nil || r.conn.IsClosed() {
		return ErrClosed
	}

	return nil
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}

	return errors.Join(errs...)
}

type DeclareQueueConfig struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp.Table
}

// DeclareQueue declares a queue with the given configuration.
func (r *Client) DeclareQueue(cfg DeclareQueueConfig) (amqp.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.QueueDeclare(cfg.Name, cfg.Durable, cfg.AutoDelete, cfg.Exclusive, cfg.NoWait, cfg.Args)
}

// MustDeclareDurableQueues declares every queue the services use.
func (r *Client) MustDeclareDurableQueues(names ...string) {
	for _, name := range names {
		if _, err := r.DeclareQueue(DeclareQueueConfig{Name: name, Durable: true}); err != nil {
			panic(fmt.Sprintf("Failed to declare queue %s: %v", name, err))
		}
	}
}

// Publish sends a persistent message to queue through the default exchange.
func (r *Client) Publish(queue, contentType string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := r.channel.Publish("", queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	return nil
}

type ConsumeConfig struct {
	Queue     string
	Consumer  string
	AutoAck   bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Args      amqp.Table
	Prefetch  int
}

// Consume applies the prefetch limit and starts a consumer on the queue.
func (r *Client) Consume(cfg ConsumeConfig) (<-chan amqp.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.Prefetch > 0 {
		if err := r.channel.Qos(cfg.Prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set qos: %w", err)
		}
	}

	return r.channel.Consume(cfg.Queue, cfg.Consumer, cfg.AutoAck, cfg.Exclusive, cfg.NoLocal, cfg.NoWait, cfg.Args)
}
