package iorderrepo

import (
	"context"
	"errors"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

// ErrDuplicateIdempotencyKey is returned by Create when an order with the same
// idempotency key is already stored.
var ErrDuplicateIdempotencyKey = errors.New("order with this idempotency key already exists")

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	// Create inserts the order header and returns its store-assigned ID.
	Create(ctx context.Context, o order.Order) (int64, error)
	Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}
