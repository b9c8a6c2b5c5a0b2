package ordersvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"go.opentelemetry.io/otel"
)

// GetOrder returns a single order with its items and shipping info.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	const op = "OrderService.GetOrder"

	ctx, span := otel.Tracer("ordersvc").Start(ctx, op)
	defer span.End()

	return s.getOrder(ctx, op, id)
}

// MarkAsShipped stamps the order as shipped now. An order ships once.
func (s *OrderService) MarkAsShipped(ctx context.Context, id int64) (*order.Order, error) {
	const op = "OrderService.MarkAsShipped"

	ctx, span := otel.Tracer("ordersvc").Start(ctx, op)
	defer span.End()

	o, err := s.getOrder(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if o.ShippingInfo != nil && o.ShippingInfo.ShippedDate != nil {
		return nil, errs.Validation(op, fmt.Sprintf("order %d is already shipped", id))
	}

	shipped, err := s.newRepos().ShippingRepository().MarkShipped(ctx, id, s.now())
	if err != nil {
		return nil, errs.Internal(op, "failed to mark order as shipped", err)
	}
	if !shipped {
		return nil, errs.Validation(op, fmt.Sprintf("order %d is already shipped", id))
	}

	slog.InfoContext(ctx, "Order shipped", "order_id", id)

	return s.getOrder(ctx, op, id)
}

// MarkAsArrived stamps a shipped order as delivered now.
func (s *OrderService) MarkAsArrived(ctx context.Context, id int64) (*order.Order, error) {
	const op = "OrderService.MarkAsArrived"

	ctx, span := otel.Tracer("ordersvc").Start(ctx, op)
	defer span.End()

	o, err := s.getOrder(ctx, op, id)
	if err != nil {
		return nil, err
	}
	switch {
	case o.ShippingInfo == nil || o.ShippingInfo.ShippedDate == nil:
		return nil, errs.Validation(op, fmt.Sprintf("order %d is not shipped yet", id))
	case o.ShippingInfo.ArrivalDate != nil:
		return nil, errs.Validation(op, fmt.Sprintf("order %d has already arrived", id))
	}

	arrived, err := s.newRepos().ShippingRepository().MarkArrived(ctx, id, s.now())
	if err != nil {
		return nil, errs.Internal(op, "failed to mark order as arrived", err)
	}
	if !arrived {
		return nil, errs.Validation(op, fmt.Sprintf("order %d is not in transit", id))
	}

	slog.InfoContext(ctx, "Order arrived", "order_id", id)

	return s.getOrder(ctx, op, id)
}

func (s *OrderService) getOrder(ctx context.Context, op string, id int64) (*order.Order, error) {
	if id <= 0 {
		return nil, errs.NotFound(op, fmt.Sprintf("order %d not found", id))
	}

	orders, err := s.query(ctx, op, order.QueryOrdersModel{Ids: []int64{id}, Page: 1, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errs.NotFound(op, fmt.Sprintf("order %d not found", id))
	}

	return &orders[0], nil
}
