package app

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/jobs"
	"github.com/bft-labs/bulk/internal/ports"
)

// recordingParser records every line and never emits a block.
type recordingParser struct {
	mu    sync.Mutex
	lines []string
	eof   int
	subs  []ports.BlockSubscriber
}

func (p *recordingParser) Subscribe(sub ports.BlockSubscriber) { p.subs = append(p.subs, sub) }

func (p *recordingParser) Consume(line string) {
	p.mu.Lock()
	p.lines = append(p.lines, line)
	p.mu.Unlock()
}

func (p *recordingParser) OnEOF() {
	p.mu.Lock()
	p.eof++
	p.mu.Unlock()
}

func (p *recordingParser) Metrics() domain.ParserMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.ParserMetrics{Lines: uint64(len(p.lines))}
}

func (p *recordingParser) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

func recordingDeps(deps Deps) (Deps, *recordingParser) {
	p := &recordingParser{}
	deps.NewParser = func(int) ports.Parser { return p }
	return deps, p
}

// artifacts returns the contents of every artifact in dir, sorted.
func artifacts(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, jobs.ArtifactPattern))
	require.NoError(t, err)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		out = append(out, string(data))
	}
	sort.Strings(out)
	return out
}

// framedLines splits input the way the session frames it, including a trailing unterminated line.
func framedLines(input string) []string {
	if input == "" {
		return nil
	}
	lines := strings.Split(input, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
