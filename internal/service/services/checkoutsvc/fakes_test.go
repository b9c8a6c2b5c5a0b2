package checkoutsvc

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ipayment"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
)

type fakeCatalog struct {
	products []product.Product
	err      error
	calls    int
	lastIDs  []int64
}

func (f *fakeCatalog) FindByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	f.calls++
	f.lastIDs = append([]int64(nil), ids...)
	if f.err != nil {
		return nil, f.err
	}

	var result []product.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				result = append(result, p)
			}
		}
	}

	return result, nil
}

type fakePayments struct {
	receipt  ipayment.ChargeReceipt
	err      error
	calls    int
	requests []ipayment.ChargeRequest
	onCharge func()
}

func (f *fakePayments) CreateCharge(_ context.Context, req ipayment.ChargeRequest) (ipayment.ChargeReceipt, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.onCharge != nil {
		f.onCharge()
	}
	if f.err != nil {
		return ipayment.ChargeReceipt{}, f.err
	}

	return f.receipt, nil
}

type fakeUOW struct {
	assignedID int64
	beginErr   error
	createErr  error
	itemsErr   error
	outboxErr  error
	commitErr  error

	stored      []order.Order
	storedItems []orderitem.OrderItem
	queries     []order.QueryOrdersModel

	begins    int
	commits   int
	rollbacks int
	headers   []order.Order
	items     [][]orderitem.OrderItem
	messages  []outbox.Message
	ctxErrs   []error
}

func (f *fakeUOW) Begin(ctx context.Context) error {
	f.begins++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())

	return f.beginErr
}

func (f *fakeUOW) Commit(ctx context.Context) error {
	f.commits++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())

	return f.commitErr
}

func (f *fakeUOW) Rollback(context.Context) error {
	f.rollbacks++

	return nil
}

func (f *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return fakeOrderRepo{f}
}

func (f *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return fakeOrderItemRepo{f}
}

func (f *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return fakeOutboxRepo{f}
}

// writes counts every write call that reached the store.
func (f *fakeUOW) writes() int {
	return len(f.headers) + len(f.items) + len(f.messages)
}

type fakeOrderRepo struct{ u *fakeUOW }

func (r fakeOrderRepo) Create(_ context.Context, o order.Order) (int64, error) {
	r.u.headers = append(r.u.headers, o)
	if r.u.createErr != nil {
		return 0, r.u.createErr
	}

	return r.u.assignedID, nil
}

func (r fakeOrderRepo) Query(_ context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	r.u.queries = append(r.u.queries, filter)

	var result []order.Order
	for _, o := range r.u.stored {
		for _, key := range filter.IdempotencyKeys {
			if o.IdempotencyKey == key {
				result = append(result, o)
			}
		}
	}

	return result, nil
}

type fakeOrderItemRepo struct{ u *fakeUOW }

func (r fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.u.items = append(r.u.items, items)
	if r.u.itemsErr != nil {
		return nil, r.u.itemsErr
	}

	result := make([]orderitem.OrderItem, len(items))
	for i, item := range items {
		item.ID = int64(100 + i)
		result[i] = item
	}

	return result, nil
}

func (r fakeOrderItemRepo) Query(_ context.Context, filter orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, item := range r.u.storedItems {
		for _, id := range filter.OrderIds {
			if item.OrderID == id {
				result = append(result, item)
			}
		}
	}

	return result, nil
}

type fakeOutboxRepo struct{ u *fakeUOW }

func (r fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	r.u.messages = append(r.u.messages, msg)

	return r.u.outboxErr
}

type fakeHazards struct {
	reported []reconciliation.Hazard
	err      error
}

func (f *fakeHazards) ReportHazard(_ context.Context, h reconciliation.Hazard) error {
	f.reported = append(f.reported, h)

	return f.err
}
