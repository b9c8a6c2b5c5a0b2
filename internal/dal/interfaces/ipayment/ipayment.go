package ipayment

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
)

// ChargeRequest describes a single capture.
type ChargeRequest struct {
	Amount         money.Amount
	Currency       currency.Currency
	Token          string
	ReceiptEmail   string
	Description    string
	IdempotencyKey string
}

// ChargeReceipt is returned for a captured charge.
type ChargeReceipt struct {
	ChargeID   string
	ReceiptURL string
}

// IPaymentService captures payments through an external gateway.
//
// Errors are *errs.Error of KindPayment carrying a PaymentReason.
type IPaymentService interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (ChargeReceipt, error)
}
