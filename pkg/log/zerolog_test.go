package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	return m
}

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithWriter(&buf)

	z.Info("block written",
		String("session", "1"),
		Int("statements", 3),
		Uint64("bytes", 42),
		Bool("truncated", false),
		Duration("took", time.Second),
		Err(errors.New("boom")),
	)

	m := decode(t, strings.TrimSpace(buf.String()))
	if m["message"] != "block written" {
		t.Errorf("message = %v", m["message"])
	}
	if m["level"] != "info" {
		t.Errorf("level = %v", m["level"])
	}
	if m["session"] != "1" {
		t.Errorf("session = %v", m["session"])
	}
	if m["statements"] != float64(3) {
		t.Errorf("statements = %v", m["statements"])
	}
	if m["bytes"] != float64(42) {
		t.Errorf("bytes = %v", m["bytes"])
	}
	if m["truncated"] != false {
		t.Errorf("truncated = %v", m["truncated"])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
	if _, ok := m["time"]; !ok {
		t.Error("time field missing")
	}
}

func TestZerologAdapter_OneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithWriter(&buf)

	z.Info("[1] Metrics\n\tReader:\n")
	z.Warn("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if m := decode(t, lines[0]); m["message"] != "[1] Metrics\n\tReader:\n" {
		t.Errorf("message = %q", m["message"])
	}
	if m := decode(t, lines[1]); m["level"] != "warn" {
		t.Errorf("level = %v", m["level"])
	}
}

func TestZerologAdapter_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	z.Debug("debug")
	z.Info("info")
	z.Error("error")

	out := buf.String()
	if strings.Contains(out, `"debug"`) || strings.Contains(out, `"message":"info"`) {
		t.Errorf("entries below warn written: %s", out)
	}
	if !strings.Contains(out, `"message":"error"`) {
		t.Errorf("error entry missing: %s", out)
	}
}
