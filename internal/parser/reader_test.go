package parser

import (
	"testing"

	"github.com/bft-labs/bulk/internal/domain"
	"github.com/bft-labs/bulk/internal/ports"
)

func run(blockSize int, lines []string) ([][]string, domain.ParserMetrics) {
	r := New(blockSize)
	var got [][]string
	r.Subscribe(ports.BlockSubscriberFunc(func(b domain.Block) {
		got = append(got, b.Values())
	}))
	for _, l := range lines {
		r.Consume(l)
	}
	r.OnEOF()
	return got, r.Metrics()
}

func TestReader_Blocks(t *testing.T) {
	tests := []struct {
		name      string
		blockSize int
		lines     []string
		want      [][]string
		metrics   domain.ParserMetrics
	}{
		{
			name:      "exact static block",
			blockSize: 3,
			lines:     []string{"cmd1", "cmd2", "cmd3"},
			want:      [][]string{{"cmd1", "cmd2", "cmd3"}},
			metrics:   domain.ParserMetrics{Lines: 3, Statements: 3, Blocks: 1},
		},
		{
			name:      "trailing static block flushed at eof",
			blockSize: 3,
			lines:     []string{"cmd1", "cmd2", "cmd3", "cmd4", "cmd5"},
			want:      [][]string{{"cmd1", "cmd2", "cmd3"}, {"cmd4", "cmd5"}},
			metrics:   domain.ParserMetrics{Lines: 5, Statements: 5, Blocks: 2},
		},
		{
			name:      "dynamic block closes pending static block",
			blockSize: 3,
			lines:     []string{"cmd1", "cmd2", "{", "cmd3", "cmd4", "cmd5", "cmd6", "}"},
			want:      [][]string{{"cmd1", "cmd2"}, {"cmd3", "cmd4", "cmd5", "cmd6"}},
			metrics:   domain.ParserMetrics{Lines: 8, Statements: 6, Blocks: 2},
		},
		{
			name:      "nested braces are flattened",
			blockSize: 2,
			lines:     []string{"{", "a", "{", "b", "c", "}", "d", "}", "e"},
			want:      [][]string{{"a", "b", "c", "d"}, {"e"}},
			metrics:   domain.ParserMetrics{Lines: 9, Statements: 5, Blocks: 2},
		},
		{
			name:      "unterminated dynamic block is discarded",
			blockSize: 3,
			lines:     []string{"cmd1", "{", "cmd2", "cmd3"},
			want:      [][]string{{"cmd1"}},
			metrics:   domain.ParserMetrics{Lines: 4, Statements: 1, Blocks: 1},
		},
		{
			name:      "stray closing brace ignored",
			blockSize: 2,
			lines:     []string{"}", "a", "b"},
			want:      [][]string{{"a", "b"}},
			metrics:   domain.ParserMetrics{Lines: 3, Statements: 2, Blocks: 1},
		},
		{
			name:      "empty dynamic block emits nothing",
			blockSize: 2,
			lines:     []string{"{", "}"},
			want:      nil,
			metrics:   domain.ParserMetrics{Lines: 2},
		},
		{
			name:      "no input",
			blockSize: 3,
			want:      nil,
		},
		{
			name:      "block size clamped to one",
			blockSize: 0,
			lines:     []string{"a", "b"},
			want:      [][]string{{"a"}, {"b"}},
			metrics:   domain.ParserMetrics{Lines: 2, Statements: 2, Blocks: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, m := run(tt.blockSize, tt.lines)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d blocks %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("block %d = %v, want %v", i, got[i], tt.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("block %d = %v, want %v", i, got[i], tt.want[i])
						break
					}
				}
			}
			if m != tt.metrics {
				t.Errorf("metrics = %+v, want %+v", m, tt.metrics)
			}
		})
	}
}

func TestReader_EverySubscriberReceivesBlock(t *testing.T) {
	r := New(1)
	var a, b int
	r.Subscribe(ports.BlockSubscriberFunc(func(domain.Block) { a++ }))
	r.Subscribe(ports.BlockSubscriberFunc(func(domain.Block) { b++ }))

	r.Consume("x")
	r.Consume("y")

	if a != 2 || b != 2 {
		t.Errorf("subscribers got %d and %d blocks, want 2 each", a, b)
	}
}
