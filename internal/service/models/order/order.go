package order

import (
	"fmt"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
)

// Order represents a customer order.
type Order struct {
	ID             int64                 `json:"id"`
	UserID         string                `json:"userId,omitempty"`
	FirstName      string                `json:"firstName"`
	LastName       string                `json:"lastName"`
	Email          string                `json:"email"`
	Address        string                `json:"address"`
	ZipCode        string                `json:"zipCode"`
	Place          string                `json:"place"`
	Phone          string                `json:"phone"`
	PaidAmount     money.Amount          `json:"paidAmount"`
	PaymentToken   string                `json:"-"`
	IdempotencyKey string                `json:"-"`
	ChargeID       string                `json:"chargeId,omitempty"`
	ReceiptURL     string                `json:"receiptUrl,omitempty"`
	Status         Status                `json:"status"`
	CreatedAt      time.Time             `json:"createdAt"`
	OrderItems     []orderitem.OrderItem `json:"orderItems"`
	ShippingInfo   *ShippingInfo         `json:"shippingInfo,omitempty"`
}

// New creates a draft order stamped with the current time.
func New() *Order {
	return &Order{
		Status:    StatusDraft,
		CreatedAt: time.Now().UTC(),
	}
}

// Transition moves the order to the next status.
func (o *Order) Transition(to Status) error {
	if !o.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to

	return nil
}

// ItemsTotal sums the line prices of all items.
func (o *Order) ItemsTotal() money.Amount {
	total := money.Zero
	for _, item := range o.OrderItems {
		total = total.Add(item.Price)
	}

	return total
}

// ShippingInfo tracks delivery of a persisted order.
type ShippingInfo struct {
	OrderID     int64      `json:"orderId"`
	ShippedDate *time.Time `json:"shippedDate,omitempty"`
	ArrivalDate *time.Time `json:"arrivalDate,omitempty"`
}
