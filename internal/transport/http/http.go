package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/metrics"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	adminorders "github.com/corray333/backend-labs/storefront/internal/transport/http/admin_orders"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/checkout"
	listorders "github.com/corray333/backend-labs/storefront/internal/transport/http/list_orders"
	myorders "github.com/corray333/backend-labs/storefront/internal/transport/http/my_orders"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/admin"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/identity"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

type checkoutService interface {
	HandleOrder(ctx context.Context, o *order.Order) (*order.Order, error)
}

type orderService interface {
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	MarkAsShipped(ctx context.Context, id int64) (*order.Order, error)
	MarkAsArrived(ctx context.Context, id int64) (*order.Order, error)
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	checkoutSvc checkoutService
	orderSvc    orderService
	registry    *prometheus.Registry
}

func NewHTTPTransport(
	checkoutSvc checkoutService,
	orderSvc orderService,
	registry *prometheus.Registry,
) *HTTPTransport {
	router := newRouter(metrics.NewServerMetrics(registry))
	server := newServer(router)

	return &HTTPTransport{
		server:      server,
		router:      router,
		checkoutSvc: checkoutSvc,
		orderSvc:    orderSvc,
		registry:    registry,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Handle("/metrics", metrics.Handler(h.registry))

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireUserID)
			r.Post("/orders/checkout", h.checkout)
			r.Get("/orders/my-orders", h.myOrders)
		})
		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(admin.RequireToken(viper.GetString("server.http.admin_token")))
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.Post("/{id}/ship", h.markAsShipped)
			r.Post("/{id}/arrive", h.markAsArrived)
		})
	})
}

func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	checkout.Checkout(w, r, h.checkoutSvc)
}

func (h *HTTPTransport) myOrders(w http.ResponseWriter, r *http.Request) {
	myorders.MyOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	adminorders.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) markAsShipped(w http.ResponseWriter, r *http.Request) {
	adminorders.MarkAsShipped(w, r, h.orderSvc)
}

func (h *HTTPTransport) markAsArrived(w http.ResponseWriter, r *http.Request) {
	adminorders.MarkAsArrived(w, r, h.orderSvc)
}

func newRouter(serverMetrics *metrics.ServerMetrics) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(serverMetrics.Middleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: viper.GetDuration("server.http.read_header_timeout"),
	}
}
