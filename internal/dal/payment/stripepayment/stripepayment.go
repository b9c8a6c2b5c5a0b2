package stripepayment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ipayment"
	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const op = "stripepayment.CreateCharge"

type chargeCreator interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// PaymentService captures charges through Stripe.
type PaymentService struct {
	charges chargeCreator
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.charges == nil {
		panic("stripe payment service requires an API key")
	}

	return s
}

// WithAPIKey configures the Stripe secret key.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAPIKey(key string) option {
	return func(s *PaymentService) {
		if key == "" {
			return
		}
		s.charges = client.New(key, nil).Charges
	}
}

func withCharges(c chargeCreator) option {
	return func(s *PaymentService) {
		s.charges = c
	}
}

// CreateCharge captures req.Amount from the card token.
// The idempotency key is forwarded so a retried request never charges twice.
func (s *PaymentService) CreateCharge(ctx context.Context, req ipayment.ChargeRequest) (ipayment.ChargeReceipt, error) {
	cents := req.Amount.MinorUnits()
	if cents <= 0 {
		return ipayment.ChargeReceipt{}, errs.Validation(op, "charge amount must be positive")
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(cents),
		Currency:    stripe.String(req.Currency.String()),
		Description: stripe.String(req.Description),
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if err := params.SetSource(req.Token); err != nil {
		return ipayment.ChargeReceipt{}, errs.Payment(op, errs.ReasonInvalidToken, err)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	ch, err := s.charges.New(params)
	if err != nil {
		reason := reasonOf(err)
		slog.Warn("Stripe charge failed",
			"reason", reason,
			"idempotency_key", req.IdempotencyKey,
			"error", err,
		)

		return ipayment.ChargeReceipt{}, errs.Payment(op, reason, err)
	}

	if ch.Status == stripe.ChargeStatusFailed {
		return ipayment.ChargeReceipt{}, errs.Payment(
			op,
			errs.ReasonDeclined,
			fmt.Errorf("charge %s failed: %s", ch.ID, ch.FailureMessage),
		)
	}

	return ipayment.ChargeReceipt{
		ChargeID:   ch.ID,
		ReceiptURL: ch.ReceiptURL,
	}, nil
}

func reasonOf(err error) errs.PaymentReason {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return errs.ReasonNetworkFailure
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return errs.ReasonDeclined
	case stripe.ErrorTypeInvalidRequest:
		return errs.ReasonInvalidToken
	default:
		return errs.ReasonNetworkFailure
	}
}
