// Package bulk provides an embeddable command-batching engine.
//
// Callers open a connection, stream raw text into it and close it. Every line
// is a command; commands are grouped into blocks (fixed-size, or delimited by
// "{" and "}") and each block is delivered to two independent consumers: a
// log job that writes "[<handle>] bulk: a, b, c" to the logger and a file job
// that writes the block to its own bulk_<nanos>_<tid>.log artifact.
//
// # Basic Usage
//
//	engine := bulk.New(bulk.WithOutputDir("/var/lib/bulk"))
//
//	h := engine.Open(3, 2) // block size 3, two file workers
//	engine.Feed(h, []byte("cmd1\ncmd2\n"))
//	engine.Feed(h, []byte("cmd3\n"))
//	engine.Close(h) // drains both consumers and logs the metrics report
//
// # Semantics
//
// Feed and Close on an unknown or already closed handle are silently ignored.
// Close blocks until every block produced by the connection has been
// processed; there is no cancellation. Connections are independent and may be
// used from different goroutines concurrently.
//
// # Package-level API
//
// [Connect], [Receive] and [Disconnect] operate on a process-wide engine
// that logs to stderr and writes artifacts to the working directory.
package bulk
