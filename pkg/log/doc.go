// Package log provides the logging sink used by bulk sessions and workers.
//
// This package defines a Logger interface that can be implemented by
// any logging library. A zerolog adapter, a no-op logger and an in-memory
// Recorder are provided.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or capture messages in memory:
//
//	rec := log.NewRecorder()
//	engine := bulk.New(bulk.WithLogger(rec))
//
// # Concurrency
//
// Block summaries and close reports are emitted from many goroutines at once.
// Every Logger implementation must be safe for concurrent use and must write
// each message atomically.
package log
