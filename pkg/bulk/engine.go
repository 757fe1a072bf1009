package bulk

import (
	"github.com/bft-labs/bulk/internal/app"
	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/metrics"
	"github.com/bft-labs/bulk/pkg/log"
)

// Handle identifies an open connection. The zero Handle is never valid.
type Handle = domain.Handle

// Report is the metrics report produced when a connection closes.
type Report = domain.Report

// Engine is a set of independent connections sharing one logger and output directory.
type Engine struct {
	registry *app.Registry
	logger   Logger
	base     app.SessionConfig
}

// New creates an engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var m *metrics.Metrics
	if o.registerer != nil {
		m = metrics.New(o.registerer)
	}

	return &Engine{
		registry: app.NewRegistry(app.Deps{Logger: o.logger, Metrics: m}),
		logger:   o.logger,
		base: app.SessionConfig{
			OutputDir:    o.outputDir,
			LineCapacity: o.lineCapacity,
			Overflow:     o.overflow,
		},
	}
}

// Open starts a connection grouping statements into blocks of blockSize and
// writing artifacts with threads workers. Values below 1 are raised to 1.
func (e *Engine) Open(blockSize, threads int) Handle {
	cfg := e.base
	cfg.BlockSize = blockSize
	cfg.FileThreads = threads

	cfg, adjusted := cfg.Normalize()
	for _, a := range adjusted {
		e.logger.Warn("connection config adjusted", log.String("reason", a))
	}
	return e.registry.Open(cfg)
}

// Feed streams data into the connection. Unknown handles are ignored.
func (e *Engine) Feed(h Handle, data []byte) {
	e.registry.Feed(h, data)
}

// Close flushes and drains the connection, then logs its metrics report.
// Unknown or already closed handles are ignored.
func (e *Engine) Close(h Handle) {
	e.registry.Close(h)
}

// CloseReport is Close that also returns the report.
// The bool is false when h was unknown or already closed.
func (e *Engine) CloseReport(h Handle) (Report, bool) {
	return e.registry.Close(h)
}

// Shutdown closes every open connection and returns their reports in handle order.
func (e *Engine) Shutdown() []Report {
	return e.registry.CloseAll()
}

// Connections returns the number of open connections.
func (e *Engine) Connections() int {
	return e.registry.Len()
}
