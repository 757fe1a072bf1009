package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bft-labs/bulk/internal/cliconfig"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

func TestNewProcess_Precedence(t *testing.T) {
	path := writeConfig(t, `
block_size = 2
threads = 3
line_capacity = 64
log_level = "error"
`)
	t.Setenv("BULK_THREADS", "4")

	flags := cliconfig.DefaultConfig()
	flags.BlockSize = 5
	flags.OutputDir = t.TempDir()

	p, err := newProcess(flags, path, map[string]bool{"block-size": true})
	if err != nil {
		t.Fatalf("newProcess() error = %v", err)
	}

	if p.cfg.BlockSize != 5 {
		t.Errorf("BlockSize = %v, want 5 (flag)", p.cfg.BlockSize)
	}
	if p.cfg.FileThreads != 4 {
		t.Errorf("FileThreads = %v, want 4 (env)", p.cfg.FileThreads)
	}
	if p.cfg.LineCapacity != 64 {
		t.Errorf("LineCapacity = %v, want 64 (file)", p.cfg.LineCapacity)
	}
	if p.cfg.ReadBuffer != cliconfig.DefaultReadBuffer {
		t.Errorf("ReadBuffer = %v, want default", p.cfg.ReadBuffer)
	}
}

func TestNewProcess_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `overflow = "wrap"`)

	if _, err := newProcess(cliconfig.DefaultConfig(), path, map[string]bool{}); err == nil {
		t.Fatal("newProcess() expected error for unknown overflow policy")
	}
}

func TestProcess_RunStdin(t *testing.T) {
	path := writeConfig(t, `log_level = "error"`)
	out := t.TempDir()

	flags := cliconfig.DefaultConfig()
	flags.BlockSize = 2
	flags.OutputDir = out
	flags.ReadBuffer = 3

	p, err := newProcess(flags, path, map[string]bool{"block-size": true, "output-dir": true, "read-buffer": true})
	if err != nil {
		t.Fatalf("newProcess() error = %v", err)
	}

	if err := p.runStdin(context.Background(), strings.NewReader("alpha\nbeta\ngamma\n")); err != nil {
		t.Fatalf("runStdin() error = %v", err)
	}

	if n := p.engine.Connections(); n != 0 {
		t.Errorf("Connections() = %d after EOF, want 0", n)
	}

	files, err := filepath.Glob(filepath.Join(out, "bulk_*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(files))
	}

	var contents []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		contents = append(contents, string(b))
	}
	joined := strings.Join(contents, "|")
	if !strings.Contains(joined, "alpha\nbeta\n") || !strings.Contains(joined, "gamma\n") {
		t.Errorf("unexpected artifact contents: %q", joined)
	}
}
