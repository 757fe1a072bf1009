// Package domain contains the core domain entities and value objects for bulk.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (files, logging, metrics) and
// contains only pure data and the rules attached to it.
//
// # Entities
//
//   - [Statement]: A single parsed command line
//   - [Block]: An ordered group of statements emitted together by the parser
//   - [Handle]: The opaque identifier of a live connection
//   - [Report]: Aggregated parser and worker metrics assembled at close
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
