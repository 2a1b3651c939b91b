// Package metrics exposes Prometheus metrics for the storefront API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded by the checkout and webhook counters.
const (
	OutcomeSuccess      = "success"
	OutcomeMock         = "mock"
	OutcomeRejected     = "rejected"
	OutcomeOutOfStock   = "out_of_stock"
	OutcomeProviderFail = "provider_error"
	OutcomeError        = "error"
	OutcomeIgnored      = "ignored"
)

// Metrics holds the collectors of one server instance. A nil *Metrics
// records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latencyMS *prometheus.HistogramVec
	checkouts *prometheus.CounterVec
	webhooks  *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		latencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by payment method and outcome.",
		}, []string{"method", "outcome"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhooks_total",
			Help:      "Payment notifications by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.requests, m.latencyMS, m.checkouts, m.webhooks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CheckoutCompleted counts a checkout attempt.
func (m *Metrics) CheckoutCompleted(method, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(method, outcome).Inc()
}

// WebhookProcessed counts a payment notification.
func (m *Metrics) WebhookProcessed(outcome string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(outcome).Inc()
}

// Middleware records request count and latency per matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// ServeMux fills in the pattern on the way through.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.latencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
