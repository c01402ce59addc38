// Package metrics exposes authentication counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Method labels for authentication attempts.
const (
	MethodUsername = "username"
	MethodEmail    = "email"
)

// Recorder receives authentication events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Authentication(method, outcome string)
	TokenVerification(outcome string)
}

// Metrics is a Recorder backed by a private registry.
type Metrics struct {
	registry           *prometheus.Registry
	authentications    *prometheus.CounterVec
	tokenVerifications *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophauth",
			Name:      "authentications_total",
			Help:      "Credential verification attempts by lookup method and outcome.",
		}, []string{"method", "outcome"}),
		tokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophauth",
			Name:      "token_verifications_total",
			Help:      "Access token verifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.authentications,
		m.tokenVerifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Authentication(method, outcome string) {
	m.authentications.WithLabelValues(method, outcome).Inc()
}

// TokenVerification counts a verification; outcome is usually auth.ErrorKind.
func (m *Metrics) TokenVerification(outcome string) {
	m.tokenVerifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Nop discards every event.
type Nop struct{}

func (Nop) Authentication(string, string) {}
func (Nop) TokenVerification(string)      {}
