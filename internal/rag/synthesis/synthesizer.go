package synthesis

import (
	"context"
	"fmt"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/internal/rag/llm"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

// Synthesizer formats retrieved context and delegates to the external
// generation provider. When no provider is configured, or the provider
// call fails or times out, it falls back to a deterministic extractive
// answer so the system keeps working offline. The caller always learns
// whether the fallback was used.
type Synthesizer struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logger_i.NewLogger("Answer Synthesizer"),
	}
}

// Synthesize returns the answer text and whether the extractive fallback
// produced it. The chunks arrive rank-ordered; they must not be empty.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, chunks []kbModel.RetrievedChunk) (string, bool) {
	if s.provider == nil {
		return FallbackAnswer(chunks), true
	}

	genCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	answer, err := s.provider.Generate(genCtx, query, BuildContextBlocks(chunks))
	if err != nil {
		// external failure never propagates: the system always returns
		// an answer
		s.logger.Error("Generation failed, using extractive fallback", "error", err)
		return FallbackAnswer(chunks), true
	}
	return answer, false
}

// BuildContextBlocks assembles "[docname]: excerpt" blocks in rank order,
// capping each excerpt and the total context size. When the budget runs
// out the lowest-ranked chunks are the ones dropped.
func BuildContextBlocks(chunks []kbModel.RetrievedChunk) []string {
	var blocks []string
	total := 0
	for _, chunk := range chunks {
		block := fmt.Sprintf("[%s]: %s", chunk.DocName, Excerpt(chunk.Text, config.MaxChunkExcerptChars))
		if total+len(block) > config.MaxContextChars && len(blocks) > 0 {
			break
		}
		blocks = append(blocks, block)
		total += len(block)
	}
	return blocks
}

// FallbackAnswer is the deterministic extractive answer: an excerpt of
// the highest-ranked chunk.
func FallbackAnswer(chunks []kbModel.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	return Excerpt(chunks[0].Text, config.MaxChunkExcerptChars)
}

// Excerpt truncates text to at most limit characters on a rune boundary.
func Excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
