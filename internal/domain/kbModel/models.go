package kbModel

import "time"

// Document is the ingest-time summary of one uploaded file. The chunk
// texts and vectors themselves live in the vector index, keyed by the
// document id, so there are no cyclic references back from here.
type Document struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocChunk is one word-window slice of a document, the atomic unit of
// retrieval. Chunks are immutable after ingest; a changed document is
// delete-then-reingest.
type DocChunk struct {
	ChunkId string `json:"chunk_id"`
	DocId   string `json:"doc_id"`
	DocName string `json:"doc_name"`
	Text    string `json:"text"`
	Order   int    `json:"chunk_order"`
}

// RetrievedChunk is a DocChunk paired with its similarity to the query.
type RetrievedChunk struct {
	DocChunk
	Similarity float64 `json:"similarity"`
}

// SearchResult is constructed fresh per query and never persisted.
type SearchResult struct {
	Query           string           `json:"query"`
	Answer          string           `json:"answer"`
	Sources         []string         `json:"sources"`
	Confidence      float64          `json:"confidence"`
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
	Timestamp       time.Time        `json:"timestamp"`

	// UsedFallback reports whether the extractive fallback produced the
	// answer instead of the generation service.
	UsedFallback bool `json:"used_fallback"`
}

type HealthStatus struct {
	Status           string    `json:"status"`
	DocumentsIndexed int       `json:"documents_indexed"`
	ChunksIndexed    int       `json:"chunks_indexed"`
	Timestamp        time.Time `json:"timestamp"`
}
