package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msg := outbox.New(outbox.EventOrderPlaced, 5, "order.placed", []byte(`{"orderId":5}`))

	// squirrel's SetMap orders columns alphabetically.
	mock.ExpectExec(`INSERT INTO outbox \(aggregate_id,content_type,created_at,event_type,last_error,max_retries,next_retry_at,payload,queue_name,retry_count\)`).
		WithArgs(
			int64(5), "application/json", msg.CreatedAt, "order.placed", "", outbox.DefaultMaxRetries,
			msg.NextRetryAt, []byte(`{"orderId":5}`), "order.placed", 0,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewOutboxRepository(mock).Insert(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO outbox`).WillReturnError(errors.New("tx aborted"))

	err = NewOutboxRepository(mock).Insert(context.Background(), outbox.New(outbox.EventOrderPlaced, 5, "q", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.placed")
}

func TestDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM outbox WHERE next_retry_at <= \$1 AND retry_count < max_retries ORDER BY next_retry_at, id LIMIT 10`).
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows(outboxColumns).
			AddRow(int64(1), "order.placed", int64(5), "order.placed", []byte(`{}`), "application/json", 1, 5, "boom", now, now))

	messages, err := NewOutboxRepository(mock).Due(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(5), messages[0].AggregateID)
	assert.Equal(t, "boom", messages[0].LastError)
	assert.False(t, messages[0].Exhausted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAndReschedule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	msg := outbox.Message{ID: 1, RetryCount: 1, MaxRetries: 5}
	msg.Fail(errors.New("unreachable"), time.Now())

	mock.ExpectExec(`UPDATE outbox SET retry_count = \$1, last_error = \$2, next_retry_at = \$3 WHERE id = \$4`).
		WithArgs(2, "unreachable", msg.NextRetryAt, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM outbox WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewOutboxRepository(mock)
	require.NoError(t, repo.Reschedule(context.Background(), msg))
	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
