package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(5), int64(1), 2, "5.00").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	ctx := context.Background()
	work := newUnitOfWork(mock, "usd")
	require.NoError(t, work.Begin(ctx))

	id, err := work.OrderRepository().Create(ctx, order.Order{Status: order.StatusCharged})
	require.NoError(t, err)

	_, err = work.OrderItemRepository().BulkInsert(ctx, []orderitem.OrderItem{
		{OrderID: id, ProductID: 1, Quantity: 2, Price: money.MustParse("5")},
	})
	require.NoError(t, err)
	require.NoError(t, work.Commit(ctx))
	require.NoError(t, work.Rollback(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	ctx := context.Background()
	work := newUnitOfWork(mock, "usd")
	require.NoError(t, work.Begin(ctx))

	_, err = work.OrderRepository().Create(ctx, order.Order{})
	require.Error(t, err)
	require.NoError(t, work.Rollback(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitWithoutBegin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	work := newUnitOfWork(mock, "usd")
	assert.ErrorIs(t, work.Commit(context.Background()), ErrNotStarted)
}

func TestBeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err = newUnitOfWork(mock, "usd").Begin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}
