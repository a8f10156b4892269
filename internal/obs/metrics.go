package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	accessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Operations rejected by the permission gate.",
		},
		[]string{"resource", "operation", "reason"},
	)

	lifecycleTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Lifecycle transitions attempted, by outcome.",
		},
		[]string{"resource", "operation", "outcome"},
	)

	activityDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_log_dropped_total",
			Help: "Activity log entries that failed to persist.",
		},
		[]string{"resource"},
	)
)

var registerOnce sync.Once

// Init registers all collectors in the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			accessDeniedTotal,
			lifecycleTransitionsTotal,
			activityDroppedTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records RPS, latency and in-flight requests per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpInFlight.Dec()
	}
}

func AccessDenied(resource, operation, reason string) {
	accessDeniedTotal.WithLabelValues(resource, operation, reason).Inc()
}

func Transition(resource, operation, outcome string) {
	lifecycleTransitionsTotal.WithLabelValues(resource, operation, outcome).Inc()
}

func ActivityDropped(resource string) {
	activityDroppedTotal.WithLabelValues(resource).Inc()
}
