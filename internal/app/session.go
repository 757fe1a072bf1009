package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/jobs"
	"github.com/bft-labs/bulk/internal/metrics"
	"github.com/bft-labs/bulk/internal/parser"
	"github.com/bft-labs/bulk/internal/ports"
	"github.com/bft-labs/bulk/internal/worker"
	"github.com/bft-labs/bulk/pkg/log"
)

// Pool names, used in logs and metric labels.
const (
	LogPoolName  = "log"
	FilePoolName = "file"
)

// Deps are the collaborators shared by every session of a registry.
type Deps struct {
	Logger    ports.Logger
	Metrics   *metrics.Metrics
	NewParser ports.ParserFactory
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.NewNoopLogger()
	}
	if d.NewParser == nil {
		d.NewParser = parser.NewParser
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Session bridges one connection's byte stream into a parser and fans every
// emitted block out to a single-worker log pool and a multi-worker file pool.
type Session struct {
	name    string
	logger  ports.Logger
	metrics *metrics.Metrics

	parser   ports.Parser
	logPool  *worker.Pool[domain.Block]
	filePool *worker.Pool[domain.Block]

	lifecycle lifecycle
	stopped   atomic.Bool

	// guarded by mu
	mu         sync.Mutex
	buf        []byte
	capacity   int
	overflow   OverflowPolicy
	discarding bool
	truncated  uint64
}

// NewSession creates a session and starts its pools.
func NewSession(name string, cfg SessionConfig, deps Deps) *Session {
	cfg, _ = cfg.Normalize()
	deps = deps.withDefaults()

	s := &Session{
		name:     name,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		parser:   deps.NewParser(cfg.BlockSize),
		buf:      make([]byte, 0, cfg.LineCapacity),
		capacity: cfg.LineCapacity,
		overflow: cfg.Overflow,
	}

	poolOpts := []worker.Option{worker.WithLogger(deps.Logger), worker.WithMetrics(deps.Metrics)}
	s.logPool = worker.New(LogPoolName, 1, jobs.LogJob(name, deps.Logger), poolOpts...)
	s.filePool = worker.New(FilePoolName, cfg.FileThreads,
		jobs.FileJob(jobs.FileJobConfig{Dir: cfg.OutputDir, Now: deps.Now}), poolOpts...)

	s.parser.Subscribe(s.subscriber(s.logPool))
	s.parser.Subscribe(s.subscriber(s.filePool))
	return s
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.lifecycle.load()
}

// Feed appends data to the line buffer, handing every completed line to the parser.
// Blocks the parser emits are submitted to both pools before Feed returns.
// Feed is a no-op once the session is closed.
func (s *Session) Feed(data []byte) {
	if s.stopped.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() {
		return
	}

	s.lifecycle.advance(StateActive)
	for _, c := range data {
		if c == '\n' {
			s.completeLine()
			continue
		}
		s.appendByte(c)
	}
	s.metrics.Fed(len(data))
}

// Close flushes any unterminated line, signals end of input, drains both pools
// and writes the metrics report to the logger.
// Only the first call does any work; later calls return false.
func (s *Session) Close() (domain.Report, bool) {
	if s.stopped.Load() {
		return domain.Report{}, false
	}

	s.mu.Lock()
	if s.stopped.Load() {
		s.mu.Unlock()
		return domain.Report{}, false
	}
	s.stopped.Store(true)
	s.lifecycle.advance(StateClosing)

	if len(s.buf) > 0 {
		s.completeLine()
	}
	s.parser.OnEOF()
	truncated := s.truncated
	s.mu.Unlock()

	s.logPool.Stop()
	s.filePool.Stop()
	s.logPool.Join()
	s.filePool.Join()

	report := domain.Report{
		Name:      s.name,
		Parser:    s.parser.Metrics(),
		Log:       domain.Sum(s.logPool.Metrics()),
		Files:     s.filePool.Metrics(),
		Truncated: truncated,
	}
	s.lifecycle.advance(StateClosed)

	s.logger.Info(report.String(), log.String("session", s.name))
	return report, true
}

func (s *Session) appendByte(c byte) {
	if s.overflow == OverflowTruncate && len(s.buf) >= s.capacity {
		if !s.discarding {
			s.discarding = true
			s.truncated++
			s.metrics.Truncated()
			s.logger.Warn("line truncated",
				log.String("session", s.name),
				log.Int("capacity", s.capacity),
				log.Err(domain.ErrLineTooLong),
			)
		}
		return
	}
	s.buf = append(s.buf, c)
}

func (s *Session) completeLine() {
	line := string(s.buf)
	s.buf = s.buf[:0]
	s.discarding = false
	s.parser.Consume(line)
}

func (s *Session) subscriber(pool *worker.Pool[domain.Block]) ports.BlockSubscriber {
	return ports.BlockSubscriberFunc(func(block domain.Block) {
		if err := pool.Submit(block); err != nil {
			s.logger.Warn("block dropped",
				log.String("session", s.name),
				log.String("pool", pool.Name()),
				log.Err(err),
			)
		}
	})
}
