package log

import (
	"strings"
	"sync"
)

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
}

// Field returns the value of the named field, if present.
func (e Entry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Recorder implements Logger by keeping every message in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Debug records a debug-level message.
func (r *Recorder) Debug(msg string, fields ...Field) { r.record("debug", msg, fields) }

// Info records an info-level message.
func (r *Recorder) Info(msg string, fields ...Field) { r.record("info", msg, fields) }

// Warn records a warning-level message.
func (r *Recorder) Warn(msg string, fields ...Field) { r.record("warn", msg, fields) }

// Error records an error-level message.
func (r *Recorder) Error(msg string, fields ...Field) { r.record("error", msg, fields) }

func (r *Recorder) record(level, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  append([]Field(nil), fields...),
	})
}

// Entries returns a copy of all recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Matching returns the recorded messages that start with prefix.
func (r *Recorder) Matching(prefix string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if strings.HasPrefix(e.Message, prefix) {
			out = append(out, e)
		}
	}
	return out
}
