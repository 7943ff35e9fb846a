// Package metrics exposes Prometheus counters for authentication outcomes
// and HTTP request latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess            = "success"
	ResultError              = "error"
	ResultInvalid            = "invalid"
	ResultConflict           = "conflict"
	ResultInvalidCredentials = "invalid_credentials"
	ResultMissingToken       = "missing_token"
	ResultMalformed          = "malformed"
	ResultSignature          = "signature"
	ResultExpired            = "expired"
	ResultUnknownIdentity    = "unknown_identity"
)

// Metrics owns its registry so tests can build isolated instances.
type Metrics struct {
	registry       *prometheus.Registry
	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	authorizations *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_register_total",
				Help: "Registration attempts by result",
			},
			[]string{"result"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_login_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		authorizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_authorize_total",
				Help: "Protected request authorizations by result",
			},
			[]string{"result"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.registrations,
		m.logins,
		m.authorizations,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) RecordRegister(result string) {
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordAuthorize(result string) {
	m.authorizations.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
