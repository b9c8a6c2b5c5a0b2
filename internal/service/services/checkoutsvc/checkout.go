package checkoutsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ipayment"
	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
	"github.com/corray333/backend-labs/storefront/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront/checkout"))

// HandleOrder reprices the order, charges it and stores it.
//
// Pricing and payment failures leave nothing behind. A store failure after a
// successful charge moves the order to StatusChargedNotPersisted, reports it
// for reconciliation and returns a KindPersistence error.
func (s *CheckoutService) HandleOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	const op = "CheckoutService.HandleOrder"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if o == nil {
		return nil, errs.Validation(op, "order is required")
	}
	if o.PaymentToken == "" {
		return nil, errs.Validation(op, "payment token is required")
	}

	started := time.Now()
	if err := s.FixOrderPrice(ctx, o); err != nil {
		s.metrics.ObserveOutcome(string(order.StatusPricingFailed))

		return nil, err
	}
	s.metrics.ObserveStep("pricing", started)

	if !o.PaidAmount.IsPositive() {
		_ = o.Transition(order.StatusPricingFailed)
		s.metrics.ObserveOutcome(string(order.StatusPricingFailed))

		return nil, errs.Validation(op, "order total must be positive")
	}

	o.IdempotencyKey = s.idempotencyKey(o)
	span.SetAttributes(
		attribute.String("order.idempotency_key", o.IdempotencyKey),
		attribute.String("order.paid_amount", o.PaidAmount.String()),
	)

	if err := s.charge(ctx, op, o); err != nil {
		span.RecordError(err)

		return nil, err
	}

	started = time.Now()
	if err := s.persist(ctx, o); err != nil {
		if errors.Is(err, iorderrepo.ErrDuplicateIdempotencyKey) {
			if stored, ok := s.replayed(ctx, o); ok {
				s.metrics.ObserveOutcome("replayed")

				return stored, nil
			}
		}
		span.RecordError(err)
		s.reportHazard(ctx, o, err)

		return nil, errs.Persistence(op, err)
	}
	s.metrics.ObserveStep("persist", started)

	if err := o.Transition(order.StatusPersisted); err != nil {
		return nil, errs.Internal(op, "failed to complete order", err)
	}
	s.metrics.ObserveOutcome(string(order.StatusPersisted))

	slog.InfoContext(ctx, "Order placed",
		"order_id", o.ID,
		"paid_amount", o.PaidAmount.String(),
		"items", len(o.OrderItems),
	)

	return o, nil
}

// idempotencyKey returns the caller supplied key or derives one from the
// draft, so a retried draft reuses the same key at the gateway.
func (s *CheckoutService) idempotencyKey(o *order.Order) string {
	if o.IdempotencyKey != "" {
		return o.IdempotencyKey
	}

	draft := fmt.Sprintf("%s|%s|%s|%s", o.UserID, o.Email, o.PaymentToken, o.PaidAmount.String())

	return uuid.NewSHA1(idempotencyNamespace, []byte(draft)).String()
}

func (s *CheckoutService) charge(ctx context.Context, op string, o *order.Order) error {
	started := time.Now()

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	receipt, err := s.payments.CreateCharge(chargeCtx, ipayment.ChargeRequest{
		Amount:         o.PaidAmount,
		Currency:       s.currency,
		Token:          o.PaymentToken,
		ReceiptEmail:   o.Email,
		Description:    s.description,
		IdempotencyKey: o.IdempotencyKey,
	})
	s.metrics.ObserveStep("charge", started)
	if err != nil {
		_ = o.Transition(order.StatusChargeFailed)
		s.metrics.ObserveOutcome(string(order.StatusChargeFailed))

		if !errs.Is(err, errs.KindPayment) && !errs.Is(err, errs.KindValidation) {
			err = errs.Payment(op, errs.ReasonNetworkFailure, err)
		}
		slog.WarnContext(ctx, "Payment failed",
			"idempotency_key", o.IdempotencyKey,
			"reason", errs.ReasonOf(err),
			"error", err,
		)

		return err
	}

	o.ChargeID = receipt.ChargeID
	o.ReceiptURL = receipt.ReceiptURL

	return o.Transition(order.StatusCharged)
}

// persist writes the header, the items and the order.placed event in one
// transaction. It runs detached from ctx cancellation so a client that goes
// away can not abandon a write after the charge.
func (s *CheckoutService) persist(ctx context.Context, o *order.Order) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback order transaction", "error", rbErr)
		}
	}()

	header := *o
	header.OrderItems = nil
	header.Status = order.StatusPersisted

	id, err := work.OrderRepository().Create(ctx, header)
	if err != nil {
		return err
	}
	if id == 0 {
		return errors.New("store returned no order id")
	}

	items := make([]orderitem.OrderItem, len(o.OrderItems))
	for i, item := range o.OrderItems {
		item.OrderID = id
		item.Product = nil
		items[i] = item
	}

	items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(outbox.OrderPlaced{
		OrderID:    id,
		UserID:     o.UserID,
		Email:      o.Email,
		PaidAmount: o.PaidAmount.String(),
		Currency:   s.currency.String(),
		ChargeID:   o.ChargeID,
		ItemCount:  len(items),
		CreatedAt:  o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order placed event: %w", err)
	}

	err = work.OutboxRepository().Insert(ctx, outbox.New(outbox.EventOrderPlaced, id, s.orderPlacedQueue, payload))
	if err != nil {
		return err
	}

	if err = work.Commit(ctx); err != nil {
		return err
	}

	o.ID = id
	o.OrderItems = items

	return nil
}

// replayed loads the order already stored under o's idempotency key. It
// reports true only when that order carries the same charge, which is what
// the gateway returns for a retried draft.
func (s *CheckoutService) replayed(ctx context.Context, o *order.Order) (*order.Order, bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	work := s.newUOW()
	stored, err := work.OrderRepository().Query(ctx, order.QueryOrdersModel{
		IdempotencyKeys: []string{o.IdempotencyKey},
		Page:            1,
		PageSize:        1,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load order by idempotency key",
			"idempotency_key", o.IdempotencyKey,
			"error", err,
		)

		return nil, false
	}
	if len(stored) == 0 || stored[0].ChargeID != o.ChargeID {
		return nil, false
	}

	existing := stored[0]
	items, err := work.OrderItemRepository().Query(ctx, orderitem.QueryOrderItemsModel{OrderIds: []int64{existing.ID}})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load items of replayed order",
			"order_id", existing.ID,
			"error", err,
		)

		return nil, false
	}
	existing.OrderItems = items

	slog.InfoContext(ctx, "Checkout replayed an already placed order",
		"order_id", existing.ID,
		"idempotency_key", o.IdempotencyKey,
		"charge_id", o.ChargeID,
	)

	return &existing, true
}

// reportHazard records an order whose payment was captured but which could
// not be stored.
func (s *CheckoutService) reportHazard(ctx context.Context, o *order.Order, cause error) {
	_ = o.Transition(order.StatusChargedNotPersisted)
	s.metrics.ObserveOutcome(string(order.StatusChargedNotPersisted))
	s.metrics.ObserveHazard()

	slog.Log(ctx, logger.LevelCritical, "Payment captured but order was not persisted",
		"idempotency_key", o.IdempotencyKey,
		"charge_id", o.ChargeID,
		"paid_amount", o.PaidAmount.String(),
		"currency", s.currency.String(),
		"email", o.Email,
		"error", cause,
	)

	if s.hazards == nil {
		return
	}

	items := make([]reconciliation.HazardItem, len(o.OrderItems))
	for i, item := range o.OrderItems {
		items[i] = reconciliation.HazardItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.String(),
		}
	}

	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	err := s.hazards.ReportHazard(reportCtx, reconciliation.Hazard{
		IdempotencyKey: o.IdempotencyKey,
		ChargeID:       o.ChargeID,
		ReceiptURL:     o.ReceiptURL,
		UserID:         o.UserID,
		Email:          o.Email,
		Amount:         o.PaidAmount.String(),
		Currency:       s.currency.String(),
		Items:          items,
		Reason:         cause.Error(),
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		slog.Log(ctx, logger.LevelCritical, "Failed to report checkout hazard",
			"idempotency_key", o.IdempotencyKey,
			"charge_id", o.ChargeID,
			"error", err,
		)
	}
}
