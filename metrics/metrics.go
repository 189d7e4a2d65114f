package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio_admin"

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Requests sent to the REST backend by method and status code.",
	}, []string{"method", "code"})

	backendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of backend requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	gridLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grid_loads_total",
		Help:      "Grid listing loads by resource and outcome (ok, empty, error, stale).",
	}, []string{"resource", "outcome"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Dialog submissions by resource, mode and outcome.",
	}, []string{"resource", "mode", "outcome"})

	sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Browser sessions holding console state.",
	})
)

// ObserveBackend records one backend round trip. code 0 means no response.
func ObserveBackend(method string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	backendRequests.WithLabelValues(method, label).Inc()
	backendDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveGridLoad records a grid load outcome.
func ObserveGridLoad(resource, outcome string) {
	gridLoads.WithLabelValues(resource, outcome).Inc()
}

// ObserveMutation records a dialog submission outcome.
func ObserveMutation(resource, mode, outcome string) {
	mutations.WithLabelValues(resource, mode, outcome).Inc()
}

// SetSessions sets the number of live sessions.
func SetSessions(n int) {
	sessions.Set(float64(n))
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
