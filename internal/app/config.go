package app

import (
	"fmt"
	"strings"

	"github.com/bft-labs/bulk/internal/domain"
)

// DefaultLineCapacity is the line buffer capacity used when none is configured.
const DefaultLineCapacity = 1024

// OverflowPolicy decides what happens to a line longer than the line buffer.
type OverflowPolicy int

const (
	// OverflowTruncate keeps the first LineCapacity bytes and drops the rest of the line.
	OverflowTruncate OverflowPolicy = iota

	// OverflowGrow lets the buffer grow to fit any line.
	OverflowGrow
)

// String returns the configuration name of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowTruncate:
		return "truncate"
	case OverflowGrow:
		return "grow"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy parses a policy name.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate":
		return OverflowTruncate, nil
	case "grow":
		return OverflowGrow, nil
	default:
		return 0, fmt.Errorf("%w: unknown overflow policy %q", domain.ErrInvalidConfig, s)
	}
}

// SessionConfig holds the per-connection settings.
type SessionConfig struct {
	// BlockSize is the static block size handed to the parser.
	BlockSize int

	// FileThreads is the number of file pool workers.
	FileThreads int

	// OutputDir is where artifacts are written. Empty means the working directory.
	OutputDir string

	// LineCapacity is the line buffer capacity in bytes.
	LineCapacity int

	// Overflow selects the long-line policy.
	Overflow OverflowPolicy
}

// Normalize returns a copy with out-of-range values replaced and
// a description of each adjustment made.
func (c SessionConfig) Normalize() (SessionConfig, []string) {
	var adjusted []string
	if c.BlockSize < 1 {
		adjusted = append(adjusted, fmt.Sprintf("block size %d raised to 1", c.BlockSize))
		c.BlockSize = 1
	}
	if c.FileThreads < 1 {
		adjusted = append(adjusted, fmt.Sprintf("file threads %d raised to 1", c.FileThreads))
		c.FileThreads = 1
	}
	if c.LineCapacity < 1 {
		c.LineCapacity = DefaultLineCapacity
	}
	return c, adjusted
}
