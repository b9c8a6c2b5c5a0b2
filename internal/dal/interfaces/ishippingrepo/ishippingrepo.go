package ishippingrepo

import (
	"context"
	"time"
)

// IShippingRepository records delivery progress of persisted orders.
type IShippingRepository interface {
	// MarkShipped stores the shipping date. It reports false when the order
	// was already shipped.
	MarkShipped(ctx context.Context, orderID int64, at time.Time) (bool, error)
	// MarkArrived stores the arrival date. It reports false unless the order
	// is shipped and has not arrived yet.
	MarkArrived(ctx context.Context, orderID int64, at time.Time) (bool, error)
}
