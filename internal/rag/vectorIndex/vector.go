package vectorIndex

import (
	"context"

	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

// Match pairs a stored chunk with its similarity to a query vector.
type Match struct {
	Chunk kbModel.DocChunk
	Score float64
}

// Index stores (chunk, vector, document-id) triples and answers top-k
// cosine similarity queries over them. Implementations must rank
// descending by similarity with ties broken by insertion order, return
// min(k, N) matches, and treat a query against an empty index as an
// empty result rather than an error.
type Index interface {
	Insert(ctx context.Context, chunks []kbModel.DocChunk, vectors [][]float32) error

	// Remove drops every chunk belonging to the document. Removing an
	// absent document is a no-op.
	Remove(ctx context.Context, docID string) error

	Clear(ctx context.Context) error

	Search(ctx context.Context, queryVector []float32, k int) ([]Match, error)

	ChunkCount(ctx context.Context) (int, error)
}
