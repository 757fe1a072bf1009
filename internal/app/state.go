package app

import "sync/atomic"

// State represents the lifecycle state of a session.
type State int32

const (
	StateCreated State = iota
	StateActive
	StateClosing
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// lifecycle holds a session state. States only move forward:
// created -> active -> closing -> closed, with created -> closing allowed
// for sessions closed before any input.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) load() State {
	return State(l.state.Load())
}

// advance moves to next if the transition is valid from the current state.
// It returns false when the state is already at or past next.
func (l *lifecycle) advance(next State) bool {
	for {
		cur := l.load()
		if !validTransition(cur, next) {
			return false
		}
		if l.state.CompareAndSwap(int32(cur), int32(next)) {
			return true
		}
	}
}

func validTransition(from, to State) bool {
	switch from {
	case StateCreated:
		return to == StateActive || to == StateClosing
	case StateActive:
		return to == StateClosing
	case StateClosing:
		return to == StateClosed
	default:
		return false
	}
}
