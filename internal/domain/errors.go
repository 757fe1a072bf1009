package domain

import "errors"

// Domain errors represent error conditions in the bulk domain.
// These errors can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("bulk: invalid configuration")

	// ErrPoolStopped is returned when work is submitted to a pool after Stop.
	ErrPoolStopped = errors.New("bulk: pool stopped")

	// ErrLineTooLong is reported when an input line exceeds the line buffer capacity.
	ErrLineTooLong = errors.New("bulk: line exceeds buffer capacity")

	// ErrJobPanic wraps a panic recovered from a job function.
	ErrJobPanic = errors.New("bulk: job panicked")
)
