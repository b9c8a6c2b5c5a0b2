package outbox

import (
	"math"
	"time"
)

const (
	EventOrderPlaced = "order.placed"

	DefaultMaxRetries = 5

	// BaseBackoff is the delay unit of the retry schedule.
	BaseBackoff = 30 * time.Second
)

// Message is an event stored alongside an order and relayed to RabbitMQ later.
type Message struct {
	ID          int64
	EventType   string
	AggregateID int64
	QueueName   string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	NextRetryAt time.Time
}

// New creates a message ready for immediate delivery.
func New(eventType string, aggregateID int64, queue string, payload []byte) Message {
	now := time.Now().UTC()

	return Message{
		EventType:   eventType,
		AggregateID: aggregateID,
		QueueName:   queue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   now,
		NextRetryAt: now,
	}
}

// Exhausted reports whether the retry budget is spent.
func (m Message) Exhausted() bool {
	return m.RetryCount >= m.MaxRetries
}

// Backoff returns the delay before the given attempt: 60s, 120s, 240s and so on.
func Backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * BaseBackoff
}

// Fail records a failed delivery at now and schedules the next attempt.
func (m *Message) Fail(cause error, now time.Time) {
	m.RetryCount++
	m.LastError = cause.Error()
	m.NextRetryAt = now.Add(Backoff(m.RetryCount))
}

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	OrderID    int64     `json:"orderId"`
	UserID     string    `json:"userId,omitempty"`
	Email      string    `json:"email"`
	PaidAmount string    `json:"paidAmount"`
	Currency   string    `json:"currency"`
	ChargeID   string    `json:"chargeId"`
	ItemCount  int       `json:"itemCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
