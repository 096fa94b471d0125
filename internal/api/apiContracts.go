package api

import "time"

type SearchResponse struct {
	Query        string        `json:"query" example:"what is the refund policy"`
	Answer       string        `json:"answer"`
	Sources      []string      `json:"sources"`
	Confidence   float64       `json:"confidence" example:"0.83"`
	Chunks       []SourceChunk `json:"chunks"`
	UsedFallback bool          `json:"used_fallback"`
	Timestamp    time.Time     `json:"timestamp"`
}

type SourceChunk struct {
	ChunkId    string  `json:"chunk_id"`
	DocumentId string  `json:"document_id"`
	Document   string  `json:"document"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity" example:"0.91"`
}

type DocumentSummary struct {
	Id         string    `json:"id"`
	Name       string    `json:"name" example:"handbook.pdf"`
	SizeBytes  int64     `json:"size_bytes"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
}

type UploadResponse struct {
	Uploaded       []DocumentSummary `json:"uploaded"`
	Errors         []UploadError     `json:"errors,omitempty"`
	TotalDocuments int               `json:"total_documents"`
}

type UploadError struct {
	Filename string `json:"filename"`
	Message  string `json:"message" example:"unsupported file type"`
}

type HealthResponse struct {
	Status           string    `json:"status" example:"healthy"`
	DocumentsIndexed int       `json:"documents_indexed"`
	ChunksIndexed    int       `json:"chunks_indexed"`
	Timestamp        time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Kind    string `json:"kind" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"query cannot be empty"`
}

// requests---------------------

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty"`
}
