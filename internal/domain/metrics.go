package domain

import (
	"fmt"
	"strings"
)

// ParserMetrics holds cumulative parser counters.
type ParserMetrics struct {
	Lines      uint64
	Statements uint64
	Blocks     uint64
}

// ThreadMetrics holds the counters of one worker thread.
// It is written only by that worker and read only after the pool has joined.
type ThreadMetrics struct {
	Blocks     uint64
	Statements uint64
	Failed     uint64
}

// Add accumulates other into m.
func (m *ThreadMetrics) Add(other ThreadMetrics) {
	m.Blocks += other.Blocks
	m.Statements += other.Statements
	m.Failed += other.Failed
}

// Sum folds a set of per-thread metrics into one.
func Sum(metrics []ThreadMetrics) ThreadMetrics {
	var total ThreadMetrics
	for _, m := range metrics {
		total.Add(m)
	}
	return total
}

// Report is the aggregated metrics of a closed session.
type Report struct {
	// Name is the session name (the decimal handle).
	Name string

	// Parser holds the parser counters.
	Parser ParserMetrics

	// Log holds the metrics of the single log worker.
	Log ThreadMetrics

	// Files holds one entry per file worker.
	Files []ThreadMetrics

	// Truncated counts input lines cut at the line buffer capacity.
	Truncated uint64
}

// String renders the report in the multi-line form written to the log sink.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] Metrics\n", r.Name)
	sb.WriteString("\tReader:\n")
	fmt.Fprintf(&sb, "\t\tlines - %d; statements - %d; blocks - %d\n",
		r.Parser.Lines, r.Parser.Statements, r.Parser.Blocks)
	sb.WriteString("\tLog:\n")
	fmt.Fprintf(&sb, "\t\tblocks - %d; statements - %d\n", r.Log.Blocks, r.Log.Statements)
	sb.WriteString("\tFiles:\n")
	for i, m := range r.Files {
		fmt.Fprintf(&sb, "\t#%d\tblocks - %d; statements - %d\n", i, m.Blocks, m.Statements)
	}
	return sb.String()
}
