package vectorIndex

import (
	"context"
	"fmt"
	"testing"

	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

func newTestIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("NewMemoryIndex failed: %v", err)
	}
	return idx
}

func chunkOf(docID string, n int) kbModel.DocChunk {
	return kbModel.DocChunk{
		ChunkId: fmt.Sprintf("%s_%d", docID, n),
		DocId:   docID,
		DocName: docID + ".txt",
		Text:    fmt.Sprintf("chunk %d of %s", n, docID),
		Order:   n,
	}
}

func mustInsert(t *testing.T, idx *MemoryIndex, docID string, vectors ...[]float32) {
	t.Helper()
	chunks := make([]kbModel.DocChunk, len(vectors))
	for i := range vectors {
		chunks[i] = chunkOf(docID, i)
	}
	if err := idx.Insert(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("Insert(%s) failed: %v", docID, err)
	}
}

func TestSearch_RankingAndTruncation(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	mustInsert(t, idx, "doc-a",
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
		[]float32{0.9, 0.1, 0},
	)

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected min(k, N) = 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.ChunkId != "doc-a_0" {
		t.Errorf("Best match should be the aligned vector, got %s", matches[0].Chunk.ChunkId)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("Scores not descending: %v then %v", matches[0].Score, matches[1].Score)
	}

	// k larger than the corpus returns everything
	all, err := idx.Search(ctx, []float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected all 3 chunks for oversized k, got %d", len(all))
	}
}

func TestSearch_TieBreakByInsertionOrder(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	// identical vectors, identical similarity: first inserted wins
	mustInsert(t, idx, "first", []float32{0, 0, 1})
	mustInsert(t, idx, "second", []float32{0, 0, 1})
	mustInsert(t, idx, "third", []float32{0, 0, 1})

	matches, err := idx.Search(ctx, []float32{0, 0, 1}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if matches[i].Chunk.DocId != want {
			t.Errorf("rank %d: got %s, want %s", i, matches[i].Chunk.DocId, want)
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	matches, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index should not error, got %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected empty result, got %d matches", len(matches))
	}
}

func TestSearch_ZeroMagnitudeVector(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	mustInsert(t, idx, "doc-a", []float32{1, 0, 0})

	matches, err := idx.Search(ctx, []float32{0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if matches[0].Score != 0 {
		t.Errorf("Zero-magnitude query should score 0 by convention, got %v", matches[0].Score)
	}
}

func TestRemove_OnlyTargetDocument(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	mustInsert(t, idx, "keep", []float32{1, 0, 0}, []float32{0, 1, 0})
	mustInsert(t, idx, "drop", []float32{0.5, 0.5, 0}, []float32{0, 0, 1})

	if err := idx.Remove(ctx, "drop"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	count, _ := idx.ChunkCount(ctx)
	if count != 2 {
		t.Fatalf("Expected 2 surviving chunks, got %d", count)
	}

	matches, err := idx.Search(ctx, []float32{0.3, 0.3, 0.3}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, m := range matches {
		if m.Chunk.DocId == "drop" {
			t.Errorf("Search returned a chunk from the removed document: %s", m.Chunk.ChunkId)
		}
	}

	// removing an absent document is a no-op, not an error
	if err := idx.Remove(ctx, "ghost"); err != nil {
		t.Errorf("Remove of absent document should be a no-op, got %v", err)
	}
}

func TestClear_EmptiesIndex(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	mustInsert(t, idx, "doc-a", []float32{1, 0, 0})

	if err := idx.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ := idx.ChunkCount(ctx)
	if count != 0 {
		t.Errorf("Expected empty index after Clear, got %d chunks", count)
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	idx := newTestIndex(t)

	err := idx.Insert(context.Background(),
		[]kbModel.DocChunk{chunkOf("doc-a", 0)},
		[][]float32{{1, 0}})
	if err == nil {
		t.Fatal("Expected dimension mismatch error, got nil")
	}
	if !kbError.IsKind(err, kbError.KindConfiguration) {
		t.Errorf("Expected configuration error kind, got %v", kbError.KindOf(err))
	}
}

func TestSearch_InvalidTopK(t *testing.T) {
	idx := newTestIndex(t)
	mustInsert(t, idx, "doc-a", []float32{1, 0, 0})

	if _, err := idx.Search(context.Background(), []float32{1, 0, 0}, 0); err == nil {
		t.Error("Expected validation error for top_k = 0")
	}
}
