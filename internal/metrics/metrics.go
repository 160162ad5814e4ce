// Package metrics records editor activity as Prometheus metrics.
//
// Metrics are fed exclusively through domain.LifecycleHooks, so the workflow
// and the mediator stay unaware of Prometheus.
package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heimer"

// Metrics owns a private registry so several editors can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	operations    *prometheus.CounterVec
	state         *prometheus.GaugeVec
	stateDuration *prometheus.HistogramVec

	mu      sync.Mutex
	current domain.State
	since   time.Time
}

// New creates and registers the editor metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_transitions_total",
				Help:      "Total number of actions consumed by the workflow",
			},
			[]string{"action", "from", "to"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of mediator operations",
			},
			[]string{"operation", "result"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workflow_state",
				Help:      "1 for the current workflow state, 0 otherwise",
			},
			[]string{"state"},
		),
		stateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_state_duration_seconds",
				Help:      "Time spent in a workflow state before leaving it",
				Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 30, 120, 600},
			},
			[]string{"state"},
		),
		current: domain.InitialSnapshot().State,
		since:   time.Now(),
	}
	m.registry.MustRegister(m.transitions, m.operations, m.state, m.stateDuration)

	for _, s := range domain.AllStates() {
		m.state.WithLabelValues(string(s)).Set(0)
	}
	m.state.WithLabelValues(string(m.current)).Set(1)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns the callbacks that feed the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: m.onTransition,
		OnOperation:  m.onOperation,
	}
}

func (m *Metrics) onTransition(_ context.Context, e *domain.TransitionEvent) {
	m.transitions.WithLabelValues(string(e.Action), string(e.From), string(e.To)).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	if e.To == m.current {
		return
	}
	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	m.stateDuration.WithLabelValues(string(m.current)).Observe(at.Sub(m.since).Seconds())
	m.state.WithLabelValues(string(m.current)).Set(0)
	m.state.WithLabelValues(string(e.To)).Set(1)
	m.current = e.To
	m.since = at
}

func (m *Metrics) onOperation(_ context.Context, e *domain.OperationEvent) {
	result := "ok"
	if e.IsError {
		result = "error"
	}
	m.operations.WithLabelValues(e.Name, result).Inc()
}
