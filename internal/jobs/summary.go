package jobs

import (
	"strings"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/worker"
	"github.com/bft-labs/bulk/pkg/log"
)

const summarySeparator = ", "

// SummaryExecutor joins statement values into one line.
type SummaryExecutor struct {
	sb strings.Builder
	n  int
}

var _ domain.Executor = (*SummaryExecutor)(nil)

// Execute appends the statement value.
func (e *SummaryExecutor) Execute(stmt domain.Statement) error {
	if e.n > 0 {
		e.sb.WriteString(summarySeparator)
	}
	e.sb.WriteString(stmt.Value)
	e.n++
	return nil
}

// String returns the joined values.
func (e *SummaryExecutor) String() string {
	return e.sb.String()
}

// Summary renders a block the way the log job writes it.
func Summary(session string, block domain.Block) string {
	var ex SummaryExecutor
	_ = block.Run(&ex)
	return "[" + session + "] bulk: " + ex.String()
}

// LogJob returns a job writing one summary line per block to logger.
func LogJob(session string, logger log.Logger) worker.Job[domain.Block] {
	return func(_ worker.Info, block domain.Block) error {
		logger.Info(Summary(session, block))
		return nil
	}
}
