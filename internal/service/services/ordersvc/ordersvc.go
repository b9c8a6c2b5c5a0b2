package ordersvc

import (
	"context"
	"strings"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ishippingrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/uow"
	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"go.opentelemetry.io/otel"
)

// OrderService serves order listings and tracks delivery of placed orders.
type OrderService struct {
	newRepos func() repositories
	now      func() time.Time
}

type repositories interface {
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	ShippingRepository() ishippingrepo.IShippingRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newRepos == nil {
		panic("order service requires an order store")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client, currency string) option {
	return func(s *OrderService) {
		s.newRepos = func() repositories {
			return uow.NewUnitOfWork(pgClient, currency)
		}
	}
}

func withRepositories(repos repositories) option {
	return func(s *OrderService) {
		s.newRepos = func() repositories { return repos }
	}
}

// GetOrdersByUser returns the orders of a user, newest first, with their items.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	const op = "OrderService.GetOrdersByUser"

	ctx, span := otel.Tracer("ordersvc").Start(ctx, op)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errs.Validation(op, "user id is required")
	}

	return s.query(ctx, op, order.QueryOrdersModel{UserIds: []string{userID}})
}

// GetOrders returns one page of orders matching the filter.
func (s *OrderService) GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	const op = "OrderService.GetOrders"

	ctx, span := otel.Tracer("ordersvc").Start(ctx, op)
	defer span.End()

	if err := filter.Normalize(); err != nil {
		return nil, errs.Validation(op, err.Error())
	}

	switch filter.Shipping {
	case order.ShippingFilterAll, order.ShippingFilterNotShipped,
		order.ShippingFilterShippedNotArrived, order.ShippingFilterArrived:
	default:
		return nil, errs.Validation(op, "unknown shipping filter "+string(filter.Shipping))
	}

	return s.query(ctx, op, filter)
}

func (s *OrderService) query(ctx context.Context, op string, filter order.QueryOrdersModel) ([]order.Order, error) {
	repos := s.newRepos()

	orders, err := repos.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, errs.Internal(op, "failed to query orders", err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderItemQuery := orderitem.QueryOrderItemsModel{}
	byID := make(map[int64]int, len(orders))
	for i, o := range orders {
		orderItemQuery.OrderIds = append(orderItemQuery.OrderIds, o.ID)
		byID[o.ID] = i
	}

	orderItems, err := repos.OrderItemRepository().Query(ctx, orderItemQuery)
	if err != nil {
		return nil, errs.Internal(op, "failed to query order items", err)
	}

	for _, item := range orderItems {
		if i, ok := byID[item.OrderID]; ok {
			orders[i].OrderItems = append(orders[i].OrderItems, item)
		}
	}

	return orders, nil
}
