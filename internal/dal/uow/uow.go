package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ishippingrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/outbox/postgres"
	shippingrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/shipping/postgres"
	"github.com/jackc/pgx/v5"
)

var ErrNotStarted = errors.New("unit of work is not started")

// UnitOfWork groups order repositories behind one transaction.
// A UnitOfWork is used for a single Begin/Commit cycle and is not safe for concurrent use.
type UnitOfWork struct {
	pool          postgres.Pool
	tx            pgx.Tx
	currency      string
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
	shippingRepo  ishippingrepo.IShippingRepository
}

// NewUnitOfWork creates a unit of work whose repositories use the pool until Begin is called.
func NewUnitOfWork(db *postgres.Client, currency string) *UnitOfWork {
	return newUnitOfWork(db.Pool(), currency)
}

func newUnitOfWork(pool postgres.Pool, currency string) *UnitOfWork {
	u := &UnitOfWork{
		pool:     pool,
		currency: currency,
	}
	u.bind(pool)

	return u
}

func (u *UnitOfWork) bind(conn postgres.Conn) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn, u.currency)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.outboxRepo = outboxrepo.NewOutboxRepository(conn)
	u.shippingRepo = shippingrepo.NewShippingRepository(conn)
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *UnitOfWork) ShippingRepository() ishippingrepo.IShippingRepository {
	return u.shippingRepo
}

// Begin opens a transaction and rebinds the repositories to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return ErrNotStarted
	}
	defer u.reset()

	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback aborts the transaction. It is a no-op when none is open.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	defer u.reset()

	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

func (u *UnitOfWork) reset() {
	u.tx = nil
	u.bind(u.pool)
}
