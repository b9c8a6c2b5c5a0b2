package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/admin"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/identity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServices struct {
	checkoutUser string
	listUser     string
	adminCalls   int
	shipped      int64
	arrived      int64
}

func (f *fakeServices) HandleOrder(_ context.Context, o *order.Order) (*order.Order, error) {
	f.checkoutUser = o.UserID
	o.ID = 1

	return o, nil
}

func (f *fakeServices) GetOrders(context.Context, order.QueryOrdersModel) ([]order.Order, error) {
	f.adminCalls++

	return []order.Order{}, nil
}

func (f *fakeServices) GetOrdersByUser(_ context.Context, userID string) ([]order.Order, error) {
	f.listUser = userID

	return []order.Order{}, nil
}

func (f *fakeServices) GetOrder(_ context.Context, id int64) (*order.Order, error) {
	f.adminCalls++

	return &order.Order{ID: id}, nil
}

func (f *fakeServices) MarkAsShipped(_ context.Context, id int64) (*order.Order, error) {
	f.shipped = id

	return &order.Order{ID: id}, nil
}

func (f *fakeServices) MarkAsArrived(_ context.Context, id int64) (*order.Order, error) {
	f.arrived = id

	return &order.Order{ID: id}, nil
}

func newTestTransport(svc *fakeServices) http.Handler {
	h := NewHTTPTransport(svc, svc, prometheus.NewRegistry())
	h.RegisterRoutes()

	return h.Handler()
}

func TestUserRoutesRequireIdentity(t *testing.T) {
	svc := &fakeServices{}
	router := newTestTransport(svc)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/orders/checkout"},
		{http.MethodGet, "/api/v1/orders/my-orders"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
	assert.Empty(t, svc.listUser)
}

func TestMyOrdersRoute(t *testing.T) {
	svc := &fakeServices{}
	router := newTestTransport(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/my-orders", nil)
	req.Header.Set(identity.HeaderUserID, "user-7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", svc.listUser)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	viper.Set("server.http.admin_token", "s3cret")
	t.Cleanup(viper.Reset)

	svc := &fakeServices{}
	router := newTestTransport(svc)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/admin/orders"},
		{http.MethodGet, "/api/v1/admin/orders/7"},
		{http.MethodPost, "/api/v1/admin/orders/7/ship"},
		{http.MethodPost, "/api/v1/admin/orders/7/arrive"},
	}

	for _, tc := range routes {
		for _, token := range []string{"", "wrong"} {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set(identity.HeaderUserID, "user-7")
			if token != "" {
				req.Header.Set(admin.HeaderToken, token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		}
	}
	assert.Zero(t, svc.adminCalls)
	assert.Zero(t, svc.shipped)
	assert.Zero(t, svc.arrived)

	for _, tc := range routes {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set(admin.HeaderToken, "s3cret")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
	}
	assert.Equal(t, 2, svc.adminCalls)
	assert.Equal(t, int64(7), svc.shipped)
	assert.Equal(t, int64(7), svc.arrived)
}

func TestAdminRoutesClosedWithoutToken(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	svc := &fakeServices{}
	router := newTestTransport(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set(admin.HeaderToken, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.adminCalls)
}

func TestMetricsRoute(t *testing.T) {
	router := newTestTransport(&fakeServices{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/my-orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}
