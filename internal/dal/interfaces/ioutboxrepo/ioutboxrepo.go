package ioutboxrepo

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

// IOutboxRepository stores events in the transaction of the order they
// describe. Relaying them is the outbox worker's job.
type IOutboxRepository interface {
	Insert(ctx context.Context, msg outbox.Message) error
}
