package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	due         []outbox.Message
	dueErr      error
	deleted     []int64
	rescheduled []outbox.Message
}

func (f *fakeStore) Due(context.Context, time.Time, int) ([]outbox.Message, error) {
	return f.due, f.dueErr
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeStore) Reschedule(_ context.Context, msg outbox.Message) error {
	f.rescheduled = append(f.rescheduled, msg)

	return nil
}

type fakePublisher struct {
	failQueue string
	published []string
}

func (f *fakePublisher) Publish(queue, _ string, _ []byte) error {
	if queue == f.failQueue {
		return errors.New("channel closed")
	}
	f.published = append(f.published, queue)

	return nil
}

func TestRelayBatch(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{due: []outbox.Message{
		{ID: 1, QueueName: "order.placed", MaxRetries: 5},
		{ID: 2, QueueName: "broken", RetryCount: 1, MaxRetries: 5},
	}}
	pub := &fakePublisher{failQueue: "broken"}

	w := NewWorker(store, pub)
	w.now = func() time.Time { return now }

	assert.Equal(t, 1, w.relayBatch(context.Background()))
	assert.Equal(t, []string{"order.placed"}, pub.published)
	assert.Equal(t, []int64{1}, store.deleted)

	require.Len(t, store.rescheduled, 1)
	retried := store.rescheduled[0]
	assert.Equal(t, int64(2), retried.ID)
	assert.Equal(t, 2, retried.RetryCount)
	assert.Equal(t, "channel closed", retried.LastError)
	assert.Equal(t, now.Add(outbox.Backoff(2)), retried.NextRetryAt)
}

func TestRelayBatchStoreDown(t *testing.T) {
	w := NewWorker(&fakeStore{dueErr: errors.New("conn refused")}, &fakePublisher{})

	assert.Zero(t, w.relayBatch(context.Background()))
}

func TestStartStopsOnCancel(t *testing.T) {
	w := NewWorker(&fakeStore{}, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
