package vectorIndex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

type memoryEntry struct {
	chunk  kbModel.DocChunk
	vector []float32
}

// MemoryIndex is the default Index backend: an exhaustive cosine scan
// over all live chunks. That is deliberate - at the target scale
// (single process, bounded corpus) a linear scan beats the constant
// factors of an ANN structure and keeps the ranking exact.
//
// One exclusive lock guards the mapping structures. Embedding and
// generation calls happen outside this package and never hold it.
type MemoryIndex struct {
	mu        sync.Mutex
	dimension int

	// entries keeps insertion order, which is the tie-break for equal
	// similarity scores
	entries []memoryEntry
	byDoc   map[string][]string
}

func NewMemoryIndex(dimension int) (*MemoryIndex, error) {
	if dimension <= 0 {
		return nil, kbError.New(kbError.KindConfiguration,
			fmt.Sprintf("vector dimension must be positive, got %d", dimension))
	}
	return &MemoryIndex{
		dimension: dimension,
		byDoc:     make(map[string][]string),
	}, nil
}

func (m *MemoryIndex) Insert(ctx context.Context, chunks []kbModel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range vectors {
		if len(v) != m.dimension {
			return kbError.New(kbError.KindConfiguration,
				fmt.Sprintf("vector dimension mismatch: index is %d-dimensional, chunk %q has %d", m.dimension, chunks[i].ChunkId, len(v)))
		}
	}

	for i, chunk := range chunks {
		m.entries = append(m.entries, memoryEntry{chunk: chunk, vector: vectors[i]})
		m.byDoc[chunk.DocId] = append(m.byDoc[chunk.DocId], chunk.ChunkId)
	}
	return nil
}

func (m *MemoryIndex) Remove(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byDoc[docID]; !ok {
		return nil
	}

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.chunk.DocId != docID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	delete(m.byDoc, docID)
	return nil
}

func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.byDoc = make(map[string][]string)
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, queryVector []float32, k int) ([]Match, error) {
	if len(queryVector) != m.dimension {
		return nil, kbError.New(kbError.KindConfiguration,
			fmt.Sprintf("query vector dimension mismatch: index is %d-dimensional, query has %d", m.dimension, len(queryVector)))
	}
	if k <= 0 {
		return nil, kbError.New(kbError.KindValidation, fmt.Sprintf("top_k must be positive, got %d", k))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == 0 {
		return nil, nil
	}

	type scored struct {
		order int
		score float64
	}
	scores := make([]scored, len(m.entries))
	for i, e := range m.entries {
		scores[i] = scored{order: i, score: cosineSimilarity(queryVector, e.vector)}
	}

	// stable sort on a slice already in insertion order gives first-inserted
	// the higher rank on exact ties
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	matches := make([]Match, 0, k)
	for _, s := range scores[:k] {
		matches = append(matches, Match{Chunk: m.entries[s.order].chunk, Score: s.score})
	}
	return matches, nil
}

func (m *MemoryIndex) ChunkCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// cosineSimilarity returns dot(a,b)/(|a|*|b|), or 0 when either vector
// has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
