package orderitem

import (
	"math"

	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// MaxQuantity is the largest quantity a single line can carry; order_items.quantity is an INTEGER.
const MaxQuantity = math.MaxInt32

// OrderItem represents an item within an order.
//
// Product is only populated in memory while the order is repriced and is
// never persisted; the store keeps ProductID alone.
type OrderItem struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"orderId"`
	ProductID int64            `json:"productId"`
	Product   *product.Product `json:"product,omitempty"`
	Quantity  int              `json:"quantity"`
	Price     money.Amount     `json:"price"`
}
