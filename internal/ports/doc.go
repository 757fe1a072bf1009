// Package ports defines the interfaces (ports) that connect the session core
// to its collaborators.
//
// The session orchestration in internal/app depends only on these interfaces.
// The concrete parser lives in internal/parser, the jobs in internal/jobs and
// the logging sink in pkg/log.
//
// # Port Interfaces
//
//   - [Parser]: Turns raw lines into statement blocks
//   - [BlockSubscriber]: Receives every block the parser emits
//   - [Executor]: Pluggable per-job statement execution
//   - [Logger]: Structured logging abstraction used as the report sink
//
// This separation enables testing the session core with recording fakes in
// place of the real parser.
package ports
