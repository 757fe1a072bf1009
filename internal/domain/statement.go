package domain

import "strconv"

// Handle identifies a connection for the lifetime of a registry.
// Handles are allocated from 1 upward and never reused; the zero Handle is never valid.
type Handle uint64

// String returns the decimal form used as the session name.
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Executor is the capability a job plugs into statement execution.
// Each job owns one Executor per processed block.
type Executor interface {
	Execute(stmt Statement) error
}

// Statement is a single command read from one input line.
type Statement struct {
	// Value is the displayable command text.
	Value string
}

// NewStatement creates a statement from a raw line.
func NewStatement(value string) Statement {
	return Statement{Value: value}
}

// Run hands the statement to the executor.
func (s Statement) Run(ex Executor) error {
	return ex.Execute(s)
}
