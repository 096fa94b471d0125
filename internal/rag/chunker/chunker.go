package chunker

import (
	"fmt"
	"strings"

	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
)

// WordWindowChunker splits text into overlapping fixed-size word windows.
// Chunking is a pure function of the text and the two parameters, so the
// same document always produces the same chunk boundaries.
type WordWindowChunker struct {
	windowWords  int
	overlapWords int
}

func NewWordWindowChunker(windowWords, overlapWords int) (*WordWindowChunker, error) {
	if windowWords <= 0 {
		return nil, kbError.New(kbError.KindConfiguration,
			fmt.Sprintf("chunk window must be positive, got %d", windowWords))
	}
	if overlapWords < 0 || overlapWords >= windowWords {
		return nil, kbError.New(kbError.KindConfiguration,
			fmt.Sprintf("chunk overlap must satisfy 0 <= overlap < window, got overlap=%d window=%d", overlapWords, windowWords))
	}
	return &WordWindowChunker{windowWords: windowWords, overlapWords: overlapWords}, nil
}

// Split emits consecutive windows of windowWords tokens, advancing the
// start by windowWords-overlapWords each step. The final window may be
// shorter than a full window; empty or whitespace-only input yields no
// chunks.
func (c *WordWindowChunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.windowWords - c.overlapWords
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.windowWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

func (c *WordWindowChunker) WindowWords() int  { return c.windowWords }
func (c *WordWindowChunker) OverlapWords() int { return c.overlapWords }
