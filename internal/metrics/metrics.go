package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the auth service. Collectors
// register on the given registry instead of the global one so tests can use
// a fresh instance per case.
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts      *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
	SessionRefreshes   *prometheus.CounterVec
	RateLimitRejects   *prometheus.CounterVec
	LockoutsStarted    prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"result"},
		),
		TokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth",
				Name:      "token_verifications_total",
				Help:      "Access token verifications by outcome",
			},
			[]string{"result"},
		),
		SessionRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth",
				Name:      "session_refreshes_total",
				Help:      "Session refresh attempts by outcome",
			},
			[]string{"result"},
		),
		RateLimitRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth",
				Name:      "rate_limit_rejects_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"purpose"},
		),
		LockoutsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "auth",
				Name:      "lockouts_started_total",
				Help:      "Account lockouts triggered by failed attempts",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "auth",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		m.LoginAttempts,
		m.TokenVerifications,
		m.SessionRefreshes,
		m.RateLimitRejects,
		m.LockoutsStarted,
		m.RequestDuration,
	)

	return m
}

// Handler serves the registry for the metrics listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome labels for the result dimension.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultLocked             = "locked"
	ResultInactive           = "inactive"
	ResultRateLimited        = "rate_limited"
	ResultInvalidToken       = "invalid_token"
	ResultExpired            = "expired"
	ResultError              = "error"
)
