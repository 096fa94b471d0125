package rag

import (
	"context"
	"time"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/internal/metrics"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
)

func (s *service) executeBatchEmbeddingStep(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	embCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	return s.embedder.BatchEmbedding(embCtx, texts)
}

func (s *service) executeQueryEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	embCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	return s.embedder.GetEmbedding(embCtx, query)
}

func (s *service) executeCacheCheckStep(ctx context.Context, query string, topK int) (kbModel.SearchResult, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	return s.cache.GetAnswer(ctx, query, topK)
}

func (s *service) executeVectorSearchStep(ctx context.Context, queryVector []float32, topK int) ([]vectorIndex.Match, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.index.Search(ctx, queryVector, topK)
}

func (s *service) executeIndexInsertStep(ctx context.Context, chunks []kbModel.DocChunk, vectors [][]float32) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_insert", time.Since(start)) }()

	return s.index.Insert(ctx, chunks, vectors)
}

func (s *service) executeSynthesisStep(ctx context.Context, query string, retrieved []kbModel.RetrievedChunk) (string, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("answer_synthesis", time.Since(start)) }()

	return s.synthesizer.Synthesize(ctx, query, retrieved)
}

func (s *service) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Answer cache invalidation failed", "error", err)
	}
}

// publishIndexGauges must be called with docMu held.
func (s *service) publishIndexGauges() {
	metrics.SetDocumentsIndexed(len(s.documents))
	metrics.SetChunksIndexed(s.chunkTotal)
}

// distinctSources returns the document names of the retrieved chunks in
// rank order, deduplicated.
func distinctSources(retrieved []kbModel.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(retrieved))
	sources := make([]string, 0, len(retrieved))
	for _, chunk := range retrieved {
		if _, ok := seen[chunk.DocName]; ok {
			continue
		}
		seen[chunk.DocName] = struct{}{}
		sources = append(sources, chunk.DocName)
	}
	return sources
}

func removeID(ids []string, target string) []string {
	kept := ids[:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}
