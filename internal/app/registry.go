package app

import (
	"sort"
	"sync"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/pkg/log"
)

// Registry maps handles to live sessions.
//
// The registry lock covers only map lookups, inserts and removals. It is never
// held across a call into a session, so sessions behind different handles are
// fed and closed fully concurrently. A session removed by Close stays alive
// for any Feed that looked it up before the removal.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	last     domain.Handle
	sessions map[domain.Handle]*Session
}

// NewRegistry creates an empty registry whose sessions share deps.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		sessions: make(map[domain.Handle]*Session),
	}
}

// Open creates a session and returns its handle.
// Handles start at 1 and are never reused.
func (r *Registry) Open(cfg SessionConfig) domain.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last++
	h := r.last
	r.sessions[h] = NewSession(h.String(), cfg, r.deps)
	r.deps.Metrics.SessionOpened()

	r.deps.Logger.Debug("session opened",
		log.String("session", h.String()),
		log.Int("block_size", cfg.BlockSize),
		log.Int("file_threads", cfg.FileThreads),
	)
	return h
}

// Feed passes data to the session behind h. Unknown handles are ignored.
func (r *Registry) Feed(h domain.Handle, data []byte) {
	s := r.lookup(h)
	if s == nil {
		return
	}
	s.Feed(data)
}

// Close detaches the session behind h and drains it.
// It returns the session report, or false if h is unknown or already closed.
func (r *Registry) Close(h domain.Handle) (domain.Report, bool) {
	r.mu.Lock()
	s, ok := r.sessions[h]
	if ok {
		delete(r.sessions, h)
	}
	r.mu.Unlock()

	if !ok {
		return domain.Report{}, false
	}
	r.deps.Metrics.SessionClosed()
	return s.Close()
}

// CloseAll detaches every live session and drains them concurrently.
// Reports are returned in handle order.
func (r *Registry) CloseAll() []domain.Report {
	r.mu.Lock()
	handles := make([]domain.Handle, 0, len(r.sessions))
	for h := range r.sessions {
		handles = append(handles, h)
	}
	sessions := r.sessions
	r.sessions = make(map[domain.Handle]*Session)
	r.mu.Unlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	reports := make([]domain.Report, len(handles))
	closed := make([]bool, len(handles))
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			reports[i], closed[i] = s.Close()
		}(i, sessions[h])
		r.deps.Metrics.SessionClosed()
	}
	wg.Wait()

	out := reports[:0]
	for i, rep := range reports {
		if closed[i] {
			out = append(out, rep)
		}
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(h domain.Handle) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[h]
}
