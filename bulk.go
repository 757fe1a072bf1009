// Package bulk provides an embeddable command-batching engine.
//
// Example usage:
//
//	h := bulk.Connect(3)
//	bulk.Receive(h, []byte("cmd1\ncmd2\ncmd3\n"))
//	bulk.Disconnect(h)
//
// For an engine with its own logger, output directory or metrics, use New:
//
//	engine := bulk.New(bulk.WithOutputDir("/tmp/bulk"))
//	h := engine.Open(3, 4)
package bulk

import (
	engine "github.com/bft-labs/bulk/pkg/bulk"
)

// Engine is a set of independent connections sharing a logger and output directory.
type Engine = engine.Engine

// Handle identifies an open connection.
type Handle = engine.Handle

// Report is the metrics report produced when a connection closes.
type Report = engine.Report

// Option configures an Engine.
type Option = engine.Option

// New creates an engine.
func New(opts ...Option) *Engine {
	return engine.New(opts...)
}

// WithLogger sets the sink for block summaries and metrics reports.
func WithLogger(logger engine.Logger) Option {
	return engine.WithLogger(logger)
}

// WithOutputDir sets the directory artifacts are written to.
func WithOutputDir(dir string) Option {
	return engine.WithOutputDir(dir)
}

// Connect opens a connection on the process-wide engine with two file workers.
func Connect(blockSize int) Handle {
	return engine.Connect(blockSize)
}

// Receive feeds data into a connection of the process-wide engine.
// Unknown handles are ignored.
func Receive(h Handle, data []byte) {
	engine.Receive(h, data)
}

// Disconnect flushes and drains a connection and logs its metrics report.
func Disconnect(h Handle) {
	engine.Disconnect(h)
}
