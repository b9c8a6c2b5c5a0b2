package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	assert.Equal(t, 60*time.Second, Backoff(1))
	assert.Equal(t, 240*time.Second, Backoff(3))
}

func TestFailSchedulesRetry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := New(EventOrderPlaced, 1, "order.placed", []byte(`{}`))

	for i := 0; i < DefaultMaxRetries-1; i++ {
		msg.Fail(errors.New("channel closed"), now)
		assert.False(t, msg.Exhausted())
	}
	msg.Fail(errors.New("channel closed"), now)

	assert.True(t, msg.Exhausted())
	assert.Equal(t, DefaultMaxRetries, msg.RetryCount)
	assert.Equal(t, "channel closed", msg.LastError)
	assert.Equal(t, now.Add(Backoff(DefaultMaxRetries)), msg.NextRetryAt)
}
