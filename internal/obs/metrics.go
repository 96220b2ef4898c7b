package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

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

	sessionsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_sessions_issued_total",
			Help: "Sessions opened by successful authentication, by method.",
		},
		[]string{"method"},
	)

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_auth_failures_total",
			Help: "Failed authentication and token confirmation attempts.",
		},
		[]string{"kind"},
	)

	permissionDenials = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_permission_denials_total",
			Help: "Group permission checks that denied.",
		},
	)
)

// Init registers the service metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		sessionsIssued, authFailures, permissionDenials,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SessionIssued counts a successful authentication by method.
func SessionIssued(method string) {
	sessionsIssued.WithLabelValues(method).Inc()
}

// AuthFailure counts a failed authentication or token confirmation.
func AuthFailure(kind string) {
	authFailures.WithLabelValues(kind).Inc()
}

// PermissionDenied counts a denied group permission check.
func PermissionDenied() {
	permissionDenials.Inc()
}

// CanonicalPath collapses path parameters so metric labels stay bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/authentication/activate/"); ok && rest != "" {
		return "/v1/authentication/activate/:code"
	}
	if rest, ok := strings.CutPrefix(path, "/v1/group/"); ok && rest != "" {
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		switch {
		case len(parts) == 1:
			return "/v1/group/:id"
		case len(parts) == 2 && parts[1] == "members":
			return "/v1/group/:id/members"
		case len(parts) == 3 && parts[1] == "members":
			return "/v1/group/:id/members/:account"
		}
	}
	return path
}

// Instrument measures request rate, latency and in-flight count.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
