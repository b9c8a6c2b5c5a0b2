package reconciliation

import (
	"time"
)

// Hazard describes a captured charge whose order could not be persisted.
// Operators use it to refund the charge or replay the order.
type Hazard struct {
	ID             int64        `json:"id,omitempty"`
	IdempotencyKey string       `json:"idempotencyKey"`
	ChargeID       string       `json:"chargeId"`
	ReceiptURL     string       `json:"receiptUrl,omitempty"`
	UserID         string       `json:"userId,omitempty"`
	Email          string       `json:"email"`
	Amount         string       `json:"amount"`
	Currency       string       `json:"currency"`
	Items          []HazardItem `json:"items"`
	Reason         string       `json:"reason"`
	OccurredAt     time.Time    `json:"occurredAt"`
	ResolvedAt     *time.Time   `json:"resolvedAt,omitempty"`
}

// HazardItem is a priced line of the lost order.
type HazardItem struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}
