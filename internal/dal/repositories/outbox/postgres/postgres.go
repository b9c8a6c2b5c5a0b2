package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/jackc/pgx/v5"
)

const outboxTable = "outbox"

// OutboxDal is an outbox row.
type OutboxDal struct {
	Id          int64     `db:"id"`
	EventType   string    `db:"event_type"`
	AggregateId int64     `db:"aggregate_id"`
	QueueName   string    `db:"queue_name"`
	Payload     []byte    `db:"payload"`
	ContentType string    `db:"content_type"`
	RetryCount  int       `db:"retry_count"`
	MaxRetries  int       `db:"max_retries"`
	LastError   string    `db:"last_error"`
	CreatedAt   time.Time `db:"created_at"`
	NextRetryAt time.Time `db:"next_retry_at"`
}

func (d *OutboxDal) ToModel() outbox.Message {
	return outbox.Message{
		ID:          d.Id,
		EventType:   d.EventType,
		AggregateID: d.AggregateId,
		QueueName:   d.QueueName,
		Payload:     d.Payload,
		ContentType: d.ContentType,
		RetryCount:  d.RetryCount,
		MaxRetries:  d.MaxRetries,
		LastError:   d.LastError,
		CreatedAt:   d.CreatedAt,
		NextRetryAt: d.NextRetryAt,
	}
}

func (d *OutboxDal) scan(row pgx.Row) error {
	return row.Scan(
		&d.Id, &d.EventType, &d.AggregateId, &d.QueueName, &d.Payload, &d.ContentType,
		&d.RetryCount, &d.MaxRetries, &d.LastError, &d.CreatedAt, &d.NextRetryAt,
	)
}

var outboxColumns = []string{
	"id", "event_type", "aggregate_id", "queue_name", "payload", "content_type",
	"retry_count", "max_retries", "last_error", "created_at", "next_retry_at",
}

// OutboxRepository keeps order events until the relay delivers them.
type OutboxRepository struct {
	conn postgres.Conn
}

// NewOutboxRepository creates a new outbox repository on a pool or a transaction.
func NewOutboxRepository(conn postgres.Conn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
	}
}

// Insert stores msg. Inside a unit of work it commits together with the order.
func (r *OutboxRepository) Insert(ctx context.Context, msg outbox.Message) error {
	query, args, err := sq.Insert(outboxTable).
		SetMap(map[string]any{
			"event_type":    msg.EventType,
			"aggregate_id":  msg.AggregateID,
			"queue_name":    msg.QueueName,
			"payload":       msg.Payload,
			"content_type":  msg.ContentType,
			"retry_count":   msg.RetryCount,
			"max_retries":   msg.MaxRetries,
			"last_error":    msg.LastError,
			"created_at":    msg.CreatedAt,
			"next_retry_at": msg.NextRetryAt,
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s event for %d: %w", msg.EventType, msg.AggregateID, err)
	}

	return nil
}

// Due returns up to limit undelivered messages scheduled at or before now,
// oldest schedule first.
func (r *OutboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]outbox.Message, error) {
	query, args, err := sq.Select(outboxColumns...).
		From(outboxTable).
		Where(sq.LtOrEq{"next_retry_at": now}).
		Where("retry_count < max_retries").
		OrderBy("next_retry_at", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build outbox select: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]outbox.Message, 0, limit)
	for rows.Next() {
		var dal OutboxDal
		if err := dal.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox messages: %w", err)
	}

	return messages, nil
}

// Delete removes a delivered message.
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete(outboxTable).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox delete: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message %d: %w", id, err)
	}

	return nil
}

// Reschedule saves the retry state of msg after a failed delivery.
func (r *OutboxRepository) Reschedule(ctx context.Context, msg outbox.Message) error {
	query, args, err := sq.Update(outboxTable).
		Set("retry_count", msg.RetryCount).
		Set("last_error", msg.LastError).
		Set("next_retry_at", msg.NextRetryAt).
		Where(sq.Eq{"id": msg.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build outbox update: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reschedule outbox message %d: %w", msg.ID, err)
	}

	return nil
}
