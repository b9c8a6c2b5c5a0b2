package checkoutsvc

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// FixOrderPrice replaces every client supplied price with catalog prices.
//
// Each line is priced as product price times quantity and PaidAmount becomes
// the sum of the lines. The order is mutated only when every line could be
// priced; on failure it keeps its previous prices.
func (s *CheckoutService) FixOrderPrice(ctx context.Context, o *order.Order) error {
	const op = "CheckoutService.FixOrderPrice"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if o == nil {
		return errs.Validation(op, "order is required")
	}
	if o.Status == "" {
		o.Status = order.StatusDraft
	}
	if !o.Status.CanTransition(order.StatusPriced) {
		return errs.Validation(op, fmt.Sprintf("order in status %s can not be repriced", o.Status))
	}

	prices, products, total, err := s.priceItems(ctx, op, o)
	if err != nil {
		_ = o.Transition(order.StatusPricingFailed)
		span.RecordError(err)

		return err
	}

	for i := range o.OrderItems {
		p := products[o.OrderItems[i].ProductID]
		o.OrderItems[i].Product = &p
		o.OrderItems[i].Price = prices[i]
	}
	o.PaidAmount = total

	return o.Transition(order.StatusPriced)
}

// priceItems computes line prices and their total without touching the order.
// Quantities and amounts that the order tables can not hold are rejected here,
// before anything is charged.
func (s *CheckoutService) priceItems(
	ctx context.Context,
	op string,
	o *order.Order,
) ([]money.Amount, map[int64]product.Product, money.Amount, error) {
	if len(o.OrderItems) == 0 {
		return nil, nil, money.Zero, errs.Validation(op, "order has no items")
	}

	ids := make([]int64, 0, len(o.OrderItems))
	requested := make(map[int64]struct{}, len(o.OrderItems))
	for _, item := range o.OrderItems {
		if item.Quantity <= 0 || item.Quantity > orderitem.MaxQuantity {
			return nil, nil, money.Zero, errs.Validation(op, "invalid order item quantity")
		}
		if _, ok := requested[item.ProductID]; !ok {
			requested[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	found, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, money.Zero, errs.Internal(op, "failed to load products", err)
	}

	products := make(map[int64]product.Product, len(found))
	for _, p := range found {
		if _, ok := requested[p.ID]; ok {
			products[p.ID] = p
		}
	}

	if len(products) != len(requested) {
		missing := make([]int64, 0, len(requested)-len(products))
		for _, id := range ids {
			if _, ok := products[id]; !ok {
				missing = append(missing, id)
			}
		}
		slices.Sort(missing)

		return nil, nil, money.Zero, errs.NotFound(op, fmt.Sprintf("product not found: %v", missing))
	}

	prices := make([]money.Amount, len(o.OrderItems))
	total := money.Zero
	for i, item := range o.OrderItems {
		p := products[item.ProductID]
		if p.Price.IsNegative() {
			slog.ErrorContext(ctx, "Catalog product has a negative price",
				"product_id", p.ID,
				"price", p.Price.String(),
			)

			return nil, nil, money.Zero, errs.Internal(op, fmt.Sprintf("invalid catalog price for product %d", p.ID), nil)
		}
		prices[i] = p.Price.MulQty(item.Quantity)
		if prices[i].GreaterThan(money.MaxStored) {
			return nil, nil, money.Zero, errs.Validation(op, fmt.Sprintf("price of product %d exceeds the maximum order amount", p.ID))
		}
		total = total.Add(prices[i])
	}
	if total.GreaterThan(money.MaxStored) {
		return nil, nil, money.Zero, errs.Validation(op, "order total exceeds the maximum order amount")
	}

	return prices, products, total, nil
}
