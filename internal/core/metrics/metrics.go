// Package metrics holds every collector exported on /metrics: HTTP traffic recorded by
// the middleware package and the business counters recorded by services.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront", Name: "orders_placed_total", Help: "Orders created",
	})
	OrderAmountMinor = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront", Name: "order_amount_minor_total", Help: "Sum of order totals in minor units",
	})
	CartMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront", Name: "cart_mutations_total", Help: "Cart writes by operation and outcome",
	}, []string{"op", "outcome"})
	UsersProvisioned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront", Name: "users_provisioned_total", Help: "User records created on first request",
	})
	WriteConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront", Name: "write_conflicts_total", Help: "Optimistic version conflicts by operation",
	}, []string{"op"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total", Help: "Count of HTTP requests",
	}, []string{"path", "method", "status"})
	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds", Help: "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight", Help: "Requests currently being served",
	})
	// reason: rate_limit, busy, too_large, timeout
	HTTPRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_rejected_total", Help: "Requests turned away by a protective middleware",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced, OrderAmountMinor, CartMutations, UsersProvisioned, WriteConflicts,
		HTTPRequests, HTTPLatency, HTTPInFlight, HTTPRejected,
	)
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
