// Package worker provides the generic block-processing pool used by sessions.
//
// # Overview
//
// A [Pool] runs a fixed number of workers, each locked to its own OS thread.
// Workers sleep on a condition variable until work is queued or the pool is
// stopped. On wake, a worker swaps the entire pending queue for an empty one
// and processes the swapped batch outside the lock, so Submit never waits
// behind a running job.
//
// # Shutdown
//
// Stop only forbids new submissions and wakes every worker; it never cancels
// queued work. A worker exits only when it wakes with the pool stopped and
// finds the queue empty, so every item accepted by Submit is processed exactly
// once before Join returns:
//
//	p := worker.New("log", 1, job)
//	_ = p.Submit(block)
//	p.Stop()
//	p.Join()
//	stats := p.Metrics()
//
// # Ordering
//
// A single-worker pool processes items in submission order. With several
// workers, batches may be processed concurrently and no order between items is
// guaranteed.
//
// # Failures
//
// A job error or panic is logged and counted in [domain.ThreadMetrics.Failed];
// the worker keeps running.
package worker
