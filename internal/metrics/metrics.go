// Package metrics exposes engine counters to Prometheus.
//
// The counters complement the per-session close report: the report is exact
// and assembled after drain, while these collectors are live and process-wide.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bulk"

// Metrics holds the engine-level collectors.
type Metrics struct {
	SessionsActive prometheus.Gauge
	SessionsOpened prometheus.Counter
	BytesFed       prometheus.Counter
	LinesTruncated prometheus.Counter

	PoolBlocks     *prometheus.CounterVec
	PoolStatements *prometheus.CounterVec
	PoolFailures   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of open sessions",
		}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "opened_total",
			Help:      "Total number of sessions opened",
		}),
		BytesFed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_fed_total",
			Help:      "Total number of input bytes accepted by sessions",
		}),
		LinesTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_truncated_total",
			Help:      "Total number of input lines cut at the line buffer capacity",
		}),
		PoolBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "blocks_total",
				Help:      "Total number of blocks processed by worker pools",
			},
			[]string{"pool"},
		),
		PoolStatements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "statements_total",
				Help:      "Total number of statements processed by worker pools",
			},
			[]string{"pool"},
		),
		PoolFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "failures_total",
				Help:      "Total number of failed block jobs",
			},
			[]string{"pool"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.SessionsActive,
			m.SessionsOpened,
			m.BytesFed,
			m.LinesTruncated,
			m.PoolBlocks,
			m.PoolStatements,
			m.PoolFailures,
		)
	}
	return m
}

// SessionOpened records a new session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()
}

// SessionClosed records a session leaving the registry.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// Fed records accepted input bytes.
func (m *Metrics) Fed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesFed.Add(float64(n))
}

// Truncated records one truncated line.
func (m *Metrics) Truncated() {
	if m == nil {
		return
	}
	m.LinesTruncated.Inc()
}

// Processed records one block processed by the named pool.
func (m *Metrics) Processed(pool string, statements int, failed bool) {
	if m == nil {
		return
	}
	m.PoolBlocks.WithLabelValues(pool).Inc()
	m.PoolStatements.WithLabelValues(pool).Add(float64(statements))
	if failed {
		m.PoolFailures.WithLabelValues(pool).Inc()
	}
}
