package rag_test

import (
	"context"

	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
)

// MockEmbedder implements embedding.Embedder with controllable behavior.
// The default maps any text to a deterministic 3-dimensional vector, so
// identical texts always land on identical vectors.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func vectorFor(text string) []float32 {
	var sum int
	for _, b := range []byte(text) {
		sum += int(b)
	}
	return []float32{1, float32(sum % 7), float32(sum % 11)}
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return vectorFor(query), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = vectorFor(chunk)
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int { return 3 }

// FlakyIndex wraps a real in-memory index but fails mutations on demand.
type FlakyIndex struct {
	vectorIndex.Index
	OnRemove func(ctx context.Context, docID string) error
	OnClear  func(ctx context.Context) error
}

func (f *FlakyIndex) Remove(ctx context.Context, docID string) error {
	if f.OnRemove != nil {
		return f.OnRemove(ctx, docID)
	}
	return f.Index.Remove(ctx, docID)
}

func (f *FlakyIndex) Clear(ctx context.Context) error {
	if f.OnClear != nil {
		return f.OnClear(ctx)
	}
	return f.Index.Clear(ctx)
}

// MockLLM implements llm.Provider.
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, contextBlocks []string) (string, error)
	CallCount  int
}

func (m *MockLLM) Generate(ctx context.Context, query string, contextBlocks []string) (string, error) {
	m.CallCount++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, contextBlocks)
	}
	return "mocked llm response", nil
}
