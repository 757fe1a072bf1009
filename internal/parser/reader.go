// Package parser groups command lines into statement blocks.
//
// Statements are collected into static blocks of a fixed size. A line holding
// only "{" closes the current static block early and opens a dynamic block,
// which ends at the matching "}" regardless of its size; nested braces only
// change the depth. At end of input a pending static block is emitted and an
// unterminated dynamic block is discarded.
package parser

import (
	"strings"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/ports"
)

const (
	openBrace  = "{"
	closeBrace = "}"
)

// Reader is the block-grouping parser. It is not safe for concurrent use.
type Reader struct {
	blockSize int
	subs      []ports.BlockSubscriber
	pending   domain.Block
	depth     int
	metrics   domain.ParserMetrics
}

var _ ports.Parser = (*Reader)(nil)

// New creates a reader emitting static blocks of blockSize statements.
// A block size below 1 is treated as 1.
func New(blockSize int) *Reader {
	if blockSize < 1 {
		blockSize = 1
	}
	return &Reader{blockSize: blockSize}
}

// NewParser is a ports.ParserFactory.
func NewParser(blockSize int) ports.Parser {
	return New(blockSize)
}

// Subscribe registers a receiver for emitted blocks.
func (r *Reader) Subscribe(sub ports.BlockSubscriber) {
	r.subs = append(r.subs, sub)
}

// Consume handles one input line.
func (r *Reader) Consume(line string) {
	r.metrics.Lines++

	switch strings.TrimSpace(line) {
	case openBrace:
		if r.depth == 0 {
			r.emit()
		}
		r.depth++
		return
	case closeBrace:
		// A stray closing brace outside a dynamic block is ignored.
		if r.depth == 0 {
			return
		}
		r.depth--
		if r.depth == 0 {
			r.emit()
		}
		return
	}

	r.pending = append(r.pending, domain.NewStatement(line))
	if r.depth == 0 && len(r.pending) >= r.blockSize {
		r.emit()
	}
}

// OnEOF flushes a pending static block and drops an unterminated dynamic one.
func (r *Reader) OnEOF() {
	if r.depth > 0 {
		r.pending = nil
		r.depth = 0
		return
	}
	r.emit()
}

// Metrics returns the cumulative counters.
func (r *Reader) Metrics() domain.ParserMetrics {
	return r.metrics
}

// BlockSize returns the static block size.
func (r *Reader) BlockSize() int {
	return r.blockSize
}

func (r *Reader) emit() {
	if len(r.pending) == 0 {
		return
	}
	block := r.pending
	r.pending = nil

	r.metrics.Blocks++
	r.metrics.Statements += uint64(len(block))
	for _, sub := range r.subs {
		sub.OnBlock(block)
	}
}
