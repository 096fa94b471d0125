package adapter

import (
	"net/http"

	"github.com/nkodali/KBaseAPI/internal/api"
	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

func ToSearchResponse(result kbModel.SearchResult) api.SearchResponse {
	chunks := make([]api.SourceChunk, len(result.RetrievedChunks))
	for i, c := range result.RetrievedChunks {
		chunks[i] = api.SourceChunk{
			ChunkId:    c.ChunkId,
			DocumentId: c.DocId,
			Document:   c.DocName,
			Text:       c.Text,
			Similarity: c.Similarity,
		}
	}

	return api.SearchResponse{
		Query:        result.Query,
		Answer:       result.Answer,
		Sources:      result.Sources,
		Confidence:   result.Confidence,
		Chunks:       chunks,
		UsedFallback: result.UsedFallback,
		Timestamp:    result.Timestamp,
	}
}

func ToDocumentSummary(doc kbModel.Document) api.DocumentSummary {
	return api.DocumentSummary{
		Id:         doc.Id,
		Name:       doc.Name,
		SizeBytes:  doc.SizeBytes,
		ChunkCount: doc.ChunkCount,
		UploadedAt: doc.UploadedAt,
	}
}

func ToListDocumentsResponse(docs []kbModel.Document) api.ListDocumentsResponse {
	summaries := make([]api.DocumentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = ToDocumentSummary(d)
	}
	return api.ListDocumentsResponse{Documents: summaries, Total: len(summaries)}
}

func ToHealthResponse(h kbModel.HealthStatus) api.HealthResponse {
	return api.HealthResponse{
		Status:           h.Status,
		DocumentsIndexed: h.DocumentsIndexed,
		ChunksIndexed:    h.ChunksIndexed,
		Timestamp:        h.Timestamp,
	}
}

func ToErrorResponse(kind kbError.Kind, message string) api.ErrorResponse {
	return api.ErrorResponse{Error: api.ErrorBody{Kind: string(kind), Message: message}}
}

// HttpStatusFor maps the domain error taxonomy onto HTTP status codes.
// Unknown kinds are treated as internal failures.
func HttpStatusFor(kind kbError.Kind) int {
	switch kind {
	case kbError.KindValidation:
		return http.StatusBadRequest
	case kbError.KindNotFound:
		return http.StatusNotFound
	case kbError.KindEmptyIndex:
		return http.StatusConflict
	case kbError.KindConfiguration:
		return http.StatusInternalServerError
	case kbError.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
