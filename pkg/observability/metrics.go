package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/sift/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by catalog hooks.
type Metrics struct {
	registry *prometheus.Registry

	validations   *prometheus.CounterVec
	issues        *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	registrations *prometheus.CounterVec
}

// NewMetrics registers the sift collectors on reg. A nil reg gets a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_validations_total",
				Help: "Total number of validations by schema and outcome",
			},
			[]string{"schema", "outcome"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_issues_total",
				Help: "Total number of top-level issues reported, by schema and code",
			},
			[]string{"schema", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sift_validation_duration_seconds",
				Help:    "Duration of validations",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"schema"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sift_registrations_total",
				Help: "Total number of schema registrations, including replacements",
			},
			[]string{"schema"},
		),
	}

	for _, c := range []prometheus.Collector{m.validations, m.issues, m.duration, m.registrations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns catalog hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnValidate: func(_ context.Context, e *domain.ValidationEvent) {
			m.validations.WithLabelValues(e.Schema, e.Outcome()).Inc()
			m.duration.WithLabelValues(e.Schema).Observe(e.Duration.Seconds())
			for _, code := range e.IssueCodes {
				m.issues.WithLabelValues(e.Schema, code).Inc()
			}
		},
		OnRegister: func(_ context.Context, e *domain.RegisterEvent) {
			m.registrations.WithLabelValues(e.Schema).Inc()
		},
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
