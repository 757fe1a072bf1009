package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/eapache/queue"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/metrics"
	"github.com/bft-labs/bulk/pkg/log"
)

// Sized is implemented by work items that carry a statement count.
type Sized interface {
	Size() int
}

// Info identifies the worker running a job.
type Info struct {
	// Pool is the pool name.
	Pool string

	// Index is the worker ordinal within the pool, starting at 0.
	Index int

	// TID is the OS thread id the worker is locked to, or Index where unavailable.
	TID int
}

// Job processes one item. It runs on a pool worker and must not retain item after returning.
type Job[T Sized] func(w Info, item T) error

// Option configures optional behavior of a Pool.
type Option func(*options)

type options struct {
	logger  log.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger used to report job failures.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records processed items in the given collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Pool is a fixed set of workers consuming items from one shared queue.
type Pool[T Sized] struct {
	name    string
	job     Job[T]
	logger  log.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	stopped bool

	// stats[i] is written only by worker i and read only after Join.
	stats []domain.ThreadMetrics
	wg    sync.WaitGroup
}

// New starts a pool of threads workers applying job to every submitted item.
// A thread count below 1 is treated as 1.
func New[T Sized](name string, threads int, job Job[T], opts ...Option) *Pool[T] {
	if threads < 1 {
		threads = 1
	}
	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool[T]{
		name:    name,
		job:     job,
		logger:  o.logger,
		metrics: o.metrics,
		pending: queue.New(),
		stats:   make([]domain.ThreadMetrics, threads),
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go p.run(i)
	}
	return p
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Threads returns the number of workers.
func (p *Pool[T]) Threads() int {
	return len(p.stats)
}

// Submit queues item and wakes one idle worker.
// It returns domain.ErrPoolStopped once Stop has been called.
func (p *Pool[T]) Submit(item T) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return domain.ErrPoolStopped
	}
	p.pending.Add(item)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

// Pending returns the number of queued items not yet taken by a worker.
func (p *Pool[T]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Length()
}

// Stop forbids further submissions and wakes all workers so they drain and exit.
// It does not wait; call Join for that. Stop is idempotent.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cond.Broadcast()
}

// Join blocks until every worker has exited.
// Without a prior Stop it blocks forever.
func (p *Pool[T]) Join() {
	p.wg.Wait()
}

// Metrics returns a copy of the per-worker counters.
// The result is only meaningful after Join has returned.
func (p *Pool[T]) Metrics() []domain.ThreadMetrics {
	return append([]domain.ThreadMetrics(nil), p.stats...)
}

func (p *Pool[T]) run(index int) {
	defer p.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w := Info{Pool: p.name, Index: index, TID: threadID(index)}
	stats := &p.stats[index]

	for {
		p.mu.Lock()
		for !p.stopped && p.pending.Length() == 0 {
			p.cond.Wait()
		}
		// Woken with nothing to do means stop was requested and the queue is drained.
		if p.pending.Length() == 0 {
			p.mu.Unlock()
			return
		}
		batch := p.pending
		p.pending = queue.New()
		p.mu.Unlock()

		for batch.Length() > 0 {
			p.process(w, stats, batch.Remove().(T))
		}
	}
}

func (p *Pool[T]) process(w Info, stats *domain.ThreadMetrics, item T) {
	err := p.call(w, item)

	n := item.Size()
	stats.Blocks++
	stats.Statements += uint64(n)
	if err != nil {
		stats.Failed++
		p.logger.Error("job failed",
			log.String("pool", p.name),
			log.Int("worker", w.Index),
			log.Err(err),
		)
	}
	p.metrics.Processed(p.name, n, err != nil)
}

func (p *Pool[T]) call(w Info, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrJobPanic, r)
		}
	}()
	return p.job(w, item)
}
