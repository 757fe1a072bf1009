package jobs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/worker"
)

const (
	artifactPrefix = "bulk_"
	artifactExt    = ".log"

	// maxNameAttempts bounds the suffix search when two blocks land on the same name.
	maxNameAttempts = 100
)

// ArtifactExecutor writes one statement value per line.
type ArtifactExecutor struct {
	w *bufio.Writer
}

var _ domain.Executor = (*ArtifactExecutor)(nil)

// NewArtifactExecutor creates an executor writing to w.
func NewArtifactExecutor(w io.Writer) *ArtifactExecutor {
	return &ArtifactExecutor{w: bufio.NewWriter(w)}
}

// Execute writes the statement value followed by a newline.
func (e *ArtifactExecutor) Execute(stmt domain.Statement) error {
	if _, err := e.w.WriteString(stmt.Value); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (e *ArtifactExecutor) Flush() error {
	return e.w.Flush()
}

// ArtifactName returns the base name of an artifact written at ts by thread tid.
func ArtifactName(ts time.Time, tid int) string {
	return fmt.Sprintf("%s%d_%d%s", artifactPrefix, ts.UnixNano(), tid, artifactExt)
}

// ArtifactPattern is the glob matching artifact base names.
const ArtifactPattern = artifactPrefix + "*" + artifactExt

// FileJobConfig configures the file job.
type FileJobConfig struct {
	// Dir is the directory artifacts are written to. Empty means the working directory.
	Dir string

	// Now returns the artifact timestamp. Defaults to time.Now.
	Now func() time.Time
}

// FileJob returns a job persisting every block as its own artifact.
func FileJob(cfg FileJobConfig) worker.Job[domain.Block] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(w worker.Info, block domain.Block) error {
		return writeArtifact(cfg, w.TID, block)
	}
}

func writeArtifact(cfg FileJobConfig, tid int, block domain.Block) error {
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}

	f, err := createArtifact(cfg.Dir, ArtifactName(cfg.Now(), tid))
	if err != nil {
		return err
	}

	ex := NewArtifactExecutor(f)
	if err := block.Run(ex); err != nil {
		f.Close()
		return fmt.Errorf("write artifact %s: %w", f.Name(), err)
	}
	if err := ex.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush artifact %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close artifact %s: %w", f.Name(), err)
	}
	return nil
}

// createArtifact creates name exclusively, adding a numeric suffix on collision.
func createArtifact(dir, name string) (*os.File, error) {
	base := name[:len(name)-len(artifactExt)]
	candidate := name
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create artifact: %w", err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, attempt, artifactExt)
	}
	return nil, fmt.Errorf("create artifact %s: %w", name, os.ErrExist)
}
