package adminorders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	calls []string
	id    int64
	err   error
}

func (f *fakeService) reply(call string, id int64) (*order.Order, error) {
	f.calls = append(f.calls, call)
	f.id = id
	if f.err != nil {
		return nil, f.err
	}

	shipped := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	return &order.Order{ID: id, ShippingInfo: &order.ShippingInfo{OrderID: id, ShippedDate: &shipped}}, nil
}

func (f *fakeService) GetOrder(_ context.Context, id int64) (*order.Order, error) {
	return f.reply("get", id)
}

func (f *fakeService) MarkAsShipped(_ context.Context, id int64) (*order.Order, error) {
	return f.reply("ship", id)
}

func (f *fakeService) MarkAsArrived(_ context.Context, id int64) (*order.Order, error) {
	return f.reply("arrive", id)
}

func newRequest(method, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/admin/orders/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminOrderHandlers(t *testing.T) {
	tests := map[string]struct {
		handler func(http.ResponseWriter, *http.Request, service)
		method  string
		call    string
	}{
		"details": {handler: GetOrder, method: http.MethodGet, call: "get"},
		"ship":    {handler: MarkAsShipped, method: http.MethodPost, call: "ship"},
		"arrive":  {handler: MarkAsArrived, method: http.MethodPost, call: "arrive"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &fakeService{}
			rec := httptest.NewRecorder()

			tt.handler(rec, newRequest(tt.method, "42"), svc)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []string{tt.call}, svc.calls)
			assert.Equal(t, int64(42), svc.id)

			var got order.Order
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, int64(42), got.ID)
			require.NotNil(t, got.ShippingInfo)
			assert.NotNil(t, got.ShippingInfo.ShippedDate)
		})
	}
}

func TestAdminOrderHandlersRejectBadID(t *testing.T) {
	for _, id := range []string{"abc", "", "9223372036854775808"} {
		svc := &fakeService{}
		rec := httptest.NewRecorder()

		MarkAsShipped(rec, newRequest(http.MethodPost, id), svc)

		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Empty(t, svc.calls)
	}
}

func TestAdminOrderHandlersServiceErrors(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"unknown order":   {err: errs.NotFound("op", "order 42 not found"), want: http.StatusBadRequest},
		"already shipped": {err: errs.Validation("op", "order 42 is already shipped"), want: http.StatusBadRequest},
		"db down":         {err: errs.Internal("op", "failed to mark order as shipped", errors.New("conn refused")), want: http.StatusInternalServerError},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			MarkAsShipped(rec, newRequest(http.MethodPost, "42"), &fakeService{err: tt.err})

			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "conn refused")
		})
	}
}
