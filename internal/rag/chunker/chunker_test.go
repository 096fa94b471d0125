package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func wordsOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestNewWordWindowChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		overlap int
	}{
		{"OverlapEqualsWindow", 100, 100},
		{"OverlapExceedsWindow", 100, 150},
		{"NegativeOverlap", 100, -1},
		{"ZeroWindow", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWordWindowChunker(tt.window, tt.overlap); err == nil {
				t.Errorf("NewWordWindowChunker(%d, %d) expected configuration error, got nil", tt.window, tt.overlap)
			}
		})
	}
}

func TestSplit_ThousandWordDocument(t *testing.T) {
	// 1000 words, window 500, overlap 50: window starts at 0, 450, 900.
	c, err := NewWordWindowChunker(500, 50)
	if err != nil {
		t.Fatalf("NewWordWindowChunker failed: %v", err)
	}

	chunks := c.Split(wordsOfLength(1000))

	if len(chunks) != 3 {
		t.Fatalf("Expected exactly 3 chunks, got %d", len(chunks))
	}

	wantLens := []int{500, 500, 100}
	for i, chunk := range chunks {
		if got := len(strings.Fields(chunk)); got != wantLens[i] {
			t.Errorf("chunk %d: got %d words, want %d", i, got, wantLens[i])
		}
	}

	if !strings.HasPrefix(chunks[1], "w450 ") {
		t.Errorf("second window should start at word 450, starts with %q", strings.Fields(chunks[1])[0])
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, _ := NewWordWindowChunker(500, 50)
	text := wordsOfLength(2345)

	first := c.Split(text)
	for run := 0; run < 3; run++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d chunks, want %d", run, len(again), len(first))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d: chunk %d differs between calls", run, i)
			}
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c, _ := NewWordWindowChunker(500, 50)

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if chunks := c.Split(text); len(chunks) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestSplit_ShortDocument(t *testing.T) {
	c, _ := NewWordWindowChunker(500, 50)

	chunks := c.Split(wordsOfLength(120))
	if len(chunks) != 1 {
		t.Fatalf("Expected single short chunk, got %d", len(chunks))
	}
	if got := len(strings.Fields(chunks[0])); got != 120 {
		t.Errorf("short chunk has %d words, want 120", got)
	}
}

func TestSplit_WindowBoundaryTail(t *testing.T) {
	// Exactly one window of words still produces a trailing overlap chunk
	// because the next start (450) is inside the text.
	c, _ := NewWordWindowChunker(500, 50)

	chunks := c.Split(wordsOfLength(500))
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks for a 500 word document, got %d", len(chunks))
	}
	if got := len(strings.Fields(chunks[1])); got != 50 {
		t.Errorf("tail chunk has %d words, want 50", got)
	}
}
