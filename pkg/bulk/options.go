package bulk

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/bulk/internal/app"
	"github.com/bft-labs/bulk/pkg/log"
)

// Logger is the interface for the logging sink.
type Logger = log.Logger

// OverflowPolicy decides what happens to input lines longer than the line buffer.
type OverflowPolicy = app.OverflowPolicy

const (
	// OverflowTruncate keeps the first LineCapacity bytes of a long line and drops the rest.
	OverflowTruncate = app.OverflowTruncate

	// OverflowGrow lets the line buffer grow to fit any line.
	OverflowGrow = app.OverflowGrow
)

// ParseOverflowPolicy parses "truncate" or "grow".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	return app.ParseOverflowPolicy(s)
}

// Option configures optional behavior of an Engine.
type Option func(*options)

type options struct {
	logger       Logger
	registerer   prometheus.Registerer
	outputDir    string
	lineCapacity int
	overflow     OverflowPolicy
}

func defaultOptions() options {
	return options{
		logger:       log.NewNoopLogger(),
		lineCapacity: app.DefaultLineCapacity,
		overflow:     OverflowTruncate,
	}
}

// WithLogger sets the sink for block summaries and metrics reports.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers Prometheus collectors for the engine with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithOutputDir sets the directory artifacts are written to.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

// WithLineCapacity sets the per-connection line buffer capacity in bytes.
func WithLineCapacity(n int) Option {
	return func(o *options) {
		o.lineCapacity = n
	}
}

// WithOverflowPolicy sets the long-line policy.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(o *options) {
		o.overflow = p
	}
}
