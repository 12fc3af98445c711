package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors. Create it once per
// registry and share it between clients; registering twice panics.
type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	transportErrors prometheus.Counter
	sessionExpiries prometheus.Counter
}

// NewMetrics registers the gateway collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventview",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Viewer API responses by method and status code.",
		}, []string{"method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventview",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Viewer API round-trip time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		transportErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eventview",
			Subsystem: "client",
			Name:      "transport_errors_total",
			Help:      "Requests that failed before a response was received.",
		}),
		sessionExpiries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eventview",
			Subsystem: "client",
			Name:      "session_expiries_total",
			Help:      "Responses handled as an expired session.",
		}),
	}
}

func (m *Metrics) observe(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) transportError() {
	if m == nil {
		return
	}
	m.transportErrors.Inc()
}

func (m *Metrics) sessionExpired() {
	if m == nil {
		return
	}
	m.sessionExpiries.Inc()
}
