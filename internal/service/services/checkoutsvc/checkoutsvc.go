package checkoutsvc

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ipayment"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	productrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/uow"
	"github.com/corray333/backend-labs/storefront/internal/metrics"
	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("checkoutsvc")

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

type hazardReporter interface {
	ReportHazard(ctx context.Context, h reconciliation.Hazard) error
}

// CheckoutService reprices, charges and stores orders.
type CheckoutService struct {
	catalog          iproductrepo.IProductRepository
	payments         ipayment.IPaymentService
	newUOW           func() unitOfWork
	hazards          hazardReporter
	metrics          *metrics.CheckoutMetrics
	currency         currency.Currency
	description      string
	orderPlacedQueue string
	paymentTimeout   time.Duration
	persistTimeout   time.Duration
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
// It panics when the catalog, the payment service or the store is missing.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		currency:         currency.CurrencyUSD,
		description:      "Charged From Ecommerce",
		orderPlacedQueue: "order.placed",
		paymentTimeout:   15 * time.Second,
		persistTimeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.catalog == nil:
		panic("checkout service requires a product catalog")
	case s.payments == nil:
		panic("checkout service requires a payment service")
	case s.newUOW == nil:
		panic("checkout service requires an order store")
	}

	return s
}

// WithPostgresClient reads the catalog from and stores orders in Postgres.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CheckoutService) {
		s.catalog = productrepo.NewPostgresProductRepository(pgClient.Pool())
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient, s.currency.String())
		}
	}
}

// WithPaymentService sets the payment gateway client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPaymentService(payments ipayment.IPaymentService) option {
	return func(s *CheckoutService) {
		s.payments = payments
	}
}

// WithHazardReporter sets where charged but unpersisted orders are reported.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHazardReporter(reporter hazardReporter) option {
	return func(s *CheckoutService) {
		s.hazards = reporter
	}
}

// WithMetrics sets the checkout collectors.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.CheckoutMetrics) option {
	return func(s *CheckoutService) {
		s.metrics = m
	}
}

// WithCurrency sets the currency every order is charged in.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCurrency(c currency.Currency) option {
	return func(s *CheckoutService) {
		s.currency = c
	}
}

// WithChargeDescription sets the description shown on the charge.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithChargeDescription(description string) option {
	return func(s *CheckoutService) {
		if description != "" {
			s.description = description
		}
	}
}

// WithOrderPlacedQueue sets the queue order.placed events are relayed to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderPlacedQueue(queue string) option {
	return func(s *CheckoutService) {
		if queue != "" {
			s.orderPlacedQueue = queue
		}
	}
}

// WithTimeouts bounds the gateway call and the persistence step.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTimeouts(payment, persist time.Duration) option {
	return func(s *CheckoutService) {
		if payment > 0 {
			s.paymentTimeout = payment
		}
		if persist > 0 {
			s.persistTimeout = persist
		}
	}
}

func withCatalog(catalog iproductrepo.IProductRepository) option {
	return func(s *CheckoutService) {
		s.catalog = catalog
	}
}

func withUnitOfWork(newUOW func() unitOfWork) option {
	return func(s *CheckoutService) {
		s.newUOW = newUOW
	}
}
