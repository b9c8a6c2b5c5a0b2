package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// CheckoutMetrics counts checkout outcomes.
type CheckoutMetrics struct {
	Checkouts *prometheus.CounterVec
	Hazards   prometheus.Counter
	Duration  *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout collectors on reg.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	hazards := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_hazards_total",
		Help:      "Payments captured whose order could not be persisted.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_step_duration_seconds",
		Help:      "Duration of checkout steps.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	reg.MustRegister(checkouts, hazards, duration)

	return &CheckoutMetrics{Checkouts: checkouts, Hazards: hazards, Duration: duration}
}

// ObserveOutcome counts a finished checkout. Nil receivers are ignored.
func (m *CheckoutMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}

// ObserveHazard counts a charged but unpersisted order.
func (m *CheckoutMetrics) ObserveHazard() {
	if m == nil {
		return
	}
	m.Hazards.Inc()
}

// ObserveStep records how long a checkout step took.
func (m *CheckoutMetrics) ObserveStep(step string, started time.Time) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

// ServerMetrics counts HTTP requests.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)

	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware records every request under its chi route pattern.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		handler := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			handler = rctx.RoutePattern()
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(ww.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// Handler exposes the collectors of gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
