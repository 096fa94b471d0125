package embedding

import "context"

// Embedder is the external capability boundary for turning text into
// fixed-dimension vectors. Implementations must be deterministic for a
// fixed model and must report the same Dimension for the whole process
// lifetime - ingest-time and query-time vectors have to agree.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}
