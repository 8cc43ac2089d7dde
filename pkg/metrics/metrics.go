package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records calls made to the remote storefront API.
type APIMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewAPIMetrics registers the remote API metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Duration of remote storefront API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_requests_total",
		Help: "Remote storefront API calls by operation and status code.",
	}, []string{"operation", "status"})
	reg.MustRegister(duration, requests)
	return &APIMetrics{duration: duration, requests: requests}
}

// ObserveRequest records one call. A status of zero means the request never
// got a response.
func (m *APIMetrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(op, statusLabel(status)).Inc()
}

// CartMetrics counts cart mutations.
type CartMetrics struct {
	mutations *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(mutations)
	return &CartMetrics{mutations: mutations}
}

func (m *CartMetrics) ObserveMutation(operation string, err error) {
	if m == nil || m.mutations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func statusLabel(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return strconv.Itoa(status)
}
