package ports

import "github.com/bft-labs/bulk/internal/domain"

// BlockSubscriber receives completed blocks from a Parser.
// OnBlock is invoked synchronously, once per block, in parse order.
type BlockSubscriber interface {
	OnBlock(block domain.Block)
}

// Parser groups input lines into statement blocks.
// A Parser is not safe for concurrent use; the owning session serializes calls.
type Parser interface {
	// Subscribe registers a receiver for emitted blocks.
	// All subscribers must be registered before the first Consume.
	Subscribe(sub BlockSubscriber)

	// Consume feeds one line without its terminator.
	// It may emit zero or more blocks before returning.
	Consume(line string)

	// OnEOF signals end of input, flushing a trailing block if the grouping rules call for it.
	OnEOF()

	// Metrics returns the cumulative parser counters.
	Metrics() domain.ParserMetrics
}

// ParserFactory builds a parser for a new session.
type ParserFactory func(blockSize int) Parser

// Executor is re-exported from domain for adapter implementations.
type Executor = domain.Executor

// BlockSubscriberFunc adapts a function to BlockSubscriber.
type BlockSubscriberFunc func(block domain.Block)

// OnBlock calls f(block).
func (f BlockSubscriberFunc) OnBlock(block domain.Block) {
	f(block)
}
