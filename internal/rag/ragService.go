package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nkodali/KBaseAPI/internal/adapter/utils"
	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/data/store"
	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/internal/metrics"
	"github.com/nkodali/KBaseAPI/internal/rag/chunker"
	"github.com/nkodali/KBaseAPI/internal/rag/confidence"
	"github.com/nkodali/KBaseAPI/internal/rag/embedding"
	"github.com/nkodali/KBaseAPI/internal/rag/synthesis"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

/*
ARCHITECTURE NOTE
-----------------
Service is the only surface the HTTP layer sees; the private struct
underneath holds the pipeline pieces (chunker, embedder, vector index,
synthesizer, answer cache). The constructor wires them together, which
lets tests swap any piece for a mock without the handlers noticing.

The document registry lives here, guarded by its own RWMutex; the
vector index guards its own structures. Neither lock is ever held
across an embedding or generation call.
*/

// Service exposes the knowledge-base operations to the surrounding API
// layer. Everything else (file parsing, routing) stays outside.
type Service interface {
	AddDocument(ctx context.Context, name string, text string, sizeBytes int64) (kbModel.Document, error)
	Search(ctx context.Context, query string, topK int) (kbModel.SearchResult, error)
	ListDocuments(ctx context.Context) []kbModel.Document
	RemoveDocument(ctx context.Context, docID string) error
	ClearAll(ctx context.Context) error
	Health(ctx context.Context) kbModel.HealthStatus
}

type service struct {
	chunker     *chunker.WordWindowChunker
	embedder    embedding.Embedder
	index       vectorIndex.Index
	synthesizer *synthesis.Synthesizer
	cache       store.AnswerCache
	logger      *logger_i.Logger

	docMu      sync.RWMutex
	documents  map[string]kbModel.Document
	docOrder   []string
	chunkTotal int
}

// NewService wires the retrieval pipeline. The embedder's dimension is
// fixed for the process lifetime; the index must have been built for the
// same dimension.
func NewService(ck *chunker.WordWindowChunker, em embedding.Embedder, idx vectorIndex.Index, syn *synthesis.Synthesizer, cache store.AnswerCache) Service {
	return &service{
		chunker:     ck,
		embedder:    em,
		index:       idx,
		synthesizer: syn,
		cache:       cache,
		logger:      logger_i.NewLogger("KB Service"),
		documents:   make(map[string]kbModel.Document),
	}
}

func (s *service) AddDocument(ctx context.Context, name string, text string, sizeBytes int64) (kbModel.Document, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", name)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	if name == "" {
		return kbModel.Document{}, kbError.New(kbError.KindValidation, "document name cannot be empty")
	}

	chunkTexts := s.chunker.Split(text)
	if len(chunkTexts) == 0 {
		return kbModel.Document{}, kbError.New(kbError.KindValidation, "document appears to be empty")
	}
	log.Debug("Chunked document", "chunks", len(chunkTexts))

	doc := kbModel.Document{
		Id:         utils.GetNewUUID(),
		Name:       name,
		SizeBytes:  sizeBytes,
		ChunkCount: len(chunkTexts),
		UploadedAt: time.Now().UTC(),
	}

	chunks := make([]kbModel.DocChunk, len(chunkTexts))
	for i, chunkText := range chunkTexts {
		chunks[i] = kbModel.DocChunk{
			ChunkId: fmt.Sprintf("%s_%d", doc.Id, i),
			DocId:   doc.Id,
			DocName: doc.Name,
			Text:    chunkText,
			Order:   i,
		}
	}

	vectors, err := s.executeBatchEmbeddingStep(ctx, chunkTexts)
	if err != nil {
		log.Error("Batch embedding failed", "error", err)
		return kbModel.Document{}, kbError.Wrap(kbError.KindExternalService, "embedding service failed", err)
	}

	if err := s.executeIndexInsertStep(ctx, chunks, vectors); err != nil {
		log.Error("Index insert failed", "error", err)
		return kbModel.Document{}, err
	}

	s.docMu.Lock()
	s.documents[doc.Id] = doc
	s.docOrder = append(s.docOrder, doc.Id)
	s.chunkTotal += doc.ChunkCount
	s.publishIndexGauges()
	s.docMu.Unlock()

	s.invalidateCache(ctx)

	log.Info("Document ingested", "docId", doc.Id, "chunks", doc.ChunkCount)
	return doc, nil
}

func (s *service) Search(ctx context.Context, query string, topK int) (kbModel.SearchResult, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureSearchMetrics(status, time.Since(start)) }()

	if strings.TrimSpace(query) == "" {
		status = "invalid"
		return kbModel.SearchResult{}, kbError.New(kbError.KindValidation, "query cannot be empty")
	}
	if topK <= 0 {
		status = "invalid"
		return kbModel.SearchResult{}, kbError.New(kbError.KindValidation, fmt.Sprintf("top_k must be positive, got %d", topK))
	}

	// an empty knowledge base is reported distinctly from a low-confidence
	// answer: the UI prompts for uploads on the former
	s.docMu.RLock()
	empty := len(s.documents) == 0
	s.docMu.RUnlock()
	if empty {
		status = "empty_index"
		return kbModel.SearchResult{}, kbError.New(kbError.KindEmptyIndex, "no documents indexed, upload documents first")
	}

	if cached, found := s.executeCacheCheckStep(ctx, query, topK); found {
		metrics.IncrementCacheHits()
		log.Debug("Answer served from cache")
		return cached, nil
	}

	queryVector, err := s.executeQueryEmbeddingStep(ctx, query)
	if err != nil {
		status = "embedding_failure"
		log.Error("Query embedding failed", "error", err)
		return kbModel.SearchResult{}, kbError.Wrap(kbError.KindExternalService, "embedding service failed", err)
	}

	matches, err := s.executeVectorSearchStep(ctx, queryVector, topK)
	if err != nil {
		status = "index_failure"
		log.Error("Vector search failed", "error", err)
		return kbModel.SearchResult{}, err
	}

	retrieved := make([]kbModel.RetrievedChunk, len(matches))
	similarities := make([]float64, len(matches))
	for i, m := range matches {
		retrieved[i] = kbModel.RetrievedChunk{DocChunk: m.Chunk, Similarity: m.Score}
		similarities[i] = m.Score
	}

	answer, usedFallback := s.executeSynthesisStep(ctx, query, retrieved)
	if usedFallback {
		metrics.IncrementFallbackAnswers()
	}

	result := kbModel.SearchResult{
		Query:           query,
		Answer:          answer,
		Sources:         distinctSources(retrieved),
		Confidence:      confidence.Score(similarities),
		RetrievedChunks: retrieved,
		Timestamp:       time.Now().UTC(),
		UsedFallback:    usedFallback,
	}

	// best effort, synchronous: a failed save only costs the next caller
	// a recomputation
	if err := s.cache.SaveAnswer(ctx, query, topK, result); err != nil {
		log.Error("Failed to save answer to cache", "error", err)
	}

	return result, nil
}

func (s *service) ListDocuments(ctx context.Context) []kbModel.Document {
	s.docMu.RLock()
	defer s.docMu.RUnlock()

	docs := make([]kbModel.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		docs = append(docs, s.documents[id])
	}
	return docs
}

func (s *service) RemoveDocument(ctx context.Context, docID string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "docId", docID)

	s.docMu.RLock()
	doc, found := s.documents[docID]
	s.docMu.RUnlock()
	if !found {
		return kbError.New(kbError.KindNotFound, "document not found")
	}

	// chunks leave the index before the registry forgets the document,
	// otherwise a backend failure would strand orphaned chunks
	if err := s.index.Remove(ctx, docID); err != nil {
		log.Error("Index removal failed", "error", err)
		return err
	}

	s.docMu.Lock()
	if _, still := s.documents[docID]; still {
		delete(s.documents, docID)
		s.docOrder = removeID(s.docOrder, docID)
		s.chunkTotal -= doc.ChunkCount
		s.publishIndexGauges()
	}
	s.docMu.Unlock()

	s.invalidateCache(ctx)
	log.Info("Document removed", "name", doc.Name)
	return nil
}

func (s *service) ClearAll(ctx context.Context) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if err := s.index.Clear(ctx); err != nil {
		log.Error("Index clear failed", "error", err)
		return err
	}

	s.docMu.Lock()
	s.documents = make(map[string]kbModel.Document)
	s.docOrder = nil
	s.chunkTotal = 0
	s.publishIndexGauges()
	s.docMu.Unlock()

	s.invalidateCache(ctx)
	log.Info("Knowledge base cleared")
	return nil
}

func (s *service) Health(ctx context.Context) kbModel.HealthStatus {
	s.docMu.RLock()
	defer s.docMu.RUnlock()

	return kbModel.HealthStatus{
		Status:           "healthy",
		DocumentsIndexed: len(s.documents),
		ChunksIndexed:    s.chunkTotal,
		Timestamp:        time.Now().UTC(),
	}
}
