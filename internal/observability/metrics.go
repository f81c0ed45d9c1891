package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application, including the
// access-control decision counters.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginsTotal     *prometheus.CounterVec
	lockoutsTotal   prometheus.Counter
	authzDenials    *prometheus.CounterVec
}

// NewMetrics initializes the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vinyldesk_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vinyldesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vinyldesk_logins_total",
		Help: "Login attempts by platform and outcome.",
	}, []string{"platform", "outcome"})
	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vinyldesk_lockouts_total",
		Help: "Accounts transitioned into the locked state.",
	})
	denials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vinyldesk_authz_denials_total",
		Help: "Authorization denials by platform.",
	}, []string{"platform"})
	registry.MustRegister(requests, duration, logins, lockouts, denials)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		loginsTotal:     logins,
		lockoutsTotal:   lockouts,
		authzDenials:    denials,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// LoginAttempt records one login attempt outcome ("success", "failure",
// "locked").
func (m *Metrics) LoginAttempt(platform, outcome string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(platform, outcome).Inc()
}

// Lockout records a transition into the locked state.
func (m *Metrics) Lockout() {
	if m == nil {
		return
	}
	m.lockoutsTotal.Inc()
}

// AuthzDenied records an authorization denial.
func (m *Metrics) AuthzDenied(platform string) {
	if m == nil {
		return
	}
	m.authzDenials.WithLabelValues(platform).Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
