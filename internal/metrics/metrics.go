// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "actuator"

// Metrics holds the supervisor's collectors.
// All methods are safe on a nil receiver, which records nothing.
type Metrics struct {
	linkStatus  *prometheus.GaugeVec
	queries     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	nudges      *prometheus.CounterVec
	volts       prometheus.Gauge
	active      prometheus.Gauge
	shutdowns   prometheus.Counter

	mu         sync.Mutex
	lastStatus string
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		linkStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "serial_status",
			Help:      "1 for the current serial session status, 0 otherwise.",
		}, []string{"status"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Device queries by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_requests_total",
			Help:      "Guarded transition requests by name and outcome.",
		}, []string{"transition", "outcome"}),
		nudges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nudges_total",
			Help:      "Nudge requests by direction.",
		}, []string{"direction"}),
		volts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "supply_volts",
			Help:      "Last supply voltage read by the watchdog.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "1 while transitions are allowed, 0 after a low-voltage shutdown.",
		}),
		shutdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_voltage_shutdowns_total",
			Help:      "Shutdowns requested by the voltage watchdog.",
		}),
	}

	reg.MustRegister(m.linkStatus, m.queries, m.transitions, m.nudges, m.volts, m.active, m.shutdowns)
	m.active.Set(1)
	return m
}

// SetLinkStatus moves the status gauge to label.
func (m *Metrics) SetLinkStatus(label string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastStatus != "" {
		m.linkStatus.WithLabelValues(m.lastStatus).Set(0)
	}
	m.linkStatus.WithLabelValues(label).Set(1)
	m.lastStatus = label
}

func (m *Metrics) ObserveQuery(outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) ObserveNudge(direction string) {
	if m == nil {
		return
	}
	m.nudges.WithLabelValues(direction).Inc()
}

func (m *Metrics) SetVolts(v float64) {
	if m == nil {
		return
	}
	m.volts.Set(v)
}

// ObserveShutdown records a watchdog trip and marks the system inactive.
func (m *Metrics) ObserveShutdown() {
	if m == nil {
		return
	}
	m.shutdowns.Inc()
	m.active.Set(0)
}

// SetActive mirrors the system latch.
func (m *Metrics) SetActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.active.Set(1)
		return
	}
	m.active.Set(0)
}
