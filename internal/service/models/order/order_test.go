package order

import (
	"errors"
	"testing"

	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := map[string]struct {
		path    []Status
		wantErr bool
	}{
		"happy path":            {path: []Status{StatusPriced, StatusCharged, StatusPersisted}},
		"pricing failure":       {path: []Status{StatusPricingFailed}},
		"charge failure":        {path: []Status{StatusPriced, StatusChargeFailed}},
		"hazard then recovered": {path: []Status{StatusPriced, StatusCharged, StatusChargedNotPersisted, StatusPersisted}},
		"skip pricing":          {path: []Status{StatusCharged}, wantErr: true},
		"persist uncharged":     {path: []Status{StatusPriced, StatusPersisted}, wantErr: true},
		"leave terminal":        {path: []Status{StatusPricingFailed, StatusPriced}, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			o := New()
			var err error
			for _, next := range tt.path {
				if err = o.Transition(next); err != nil {
					break
				}
			}
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path[len(tt.path)-1], o.Status)
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusPersisted.IsTerminal())
	assert.True(t, StatusPricingFailed.IsTerminal())
	assert.True(t, StatusChargeFailed.IsTerminal())
	assert.False(t, StatusChargedNotPersisted.IsTerminal())
}

func TestItemsTotal(t *testing.T) {
	o := &Order{OrderItems: []orderitem.OrderItem{
		{Price: money.MustParse("7.50")},
		{Price: money.MustParse("12.00")},
	}}
	assert.Equal(t, "19.50", o.ItemsTotal().String())
}

func TestNormalize(t *testing.T) {
	q := QueryOrdersModel{}
	require.NoError(t, q.Normalize())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit())
	assert.Equal(t, 0, q.Offset())
	assert.Equal(t, ShippingFilterAll, q.Shipping)

	q = QueryOrdersModel{Page: 3, PageSize: 9000}
	require.NoError(t, q.Normalize())
	assert.Equal(t, MaxPageSize, q.Limit())
	assert.Equal(t, 2*MaxPageSize, q.Offset())

	q = QueryOrdersModel{Page: -1}
	assert.ErrorIs(t, q.Normalize(), ErrInvalidPagination)
}
