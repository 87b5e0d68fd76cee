package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by the API client
const (
	OutcomeOK             = "ok"
	OutcomeAPIError       = "api_error"
	OutcomeTimeout        = "timeout"
	OutcomeTransportError = "transport_error"
)

// ClientMetrics counts and times the requests the API client makes
type ClientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewClientMetrics registers the client collectors on reg
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movelite",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Requests sent to the Move & Lite API by outcome.",
		}, []string{"method", "route", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "movelite",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the Move & Lite API.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe records one finished request. A nil receiver is a no-op.
func (m *ClientMetrics) Observe(method, route, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, outcome).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
