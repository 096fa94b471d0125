package rag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/data/store"
	"github.com/nkodali/KBaseAPI/internal/domain/kbError"
	"github.com/nkodali/KBaseAPI/internal/rag"
	"github.com/nkodali/KBaseAPI/internal/rag/chunker"
	"github.com/nkodali/KBaseAPI/internal/rag/llm"
	"github.com/nkodali/KBaseAPI/internal/rag/synthesis"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
)

func newTestService(t *testing.T, provider llm.Provider) rag.Service {
	t.Helper()

	ck, err := chunker.NewWordWindowChunker(5, 1)
	if err != nil {
		t.Fatalf("chunker setup failed: %v", err)
	}
	idx, err := vectorIndex.NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	return rag.NewService(ck, &MockEmbedder{}, idx, synthesis.NewSynthesizer(provider), store.InitInMemoryAnswerCache())
}

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestAddDocument_Summary(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()

	// 9 words, window 5, overlap 1: windows start at 0, 4, 8 -> 3 chunks
	doc, err := s.AddDocument(ctx, "notes.txt", "one two three four five six seven eight nine", 44)
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if doc.Id == "" {
		t.Error("document id not assigned")
	}
	if doc.Name != "notes.txt" || doc.SizeBytes != 44 {
		t.Errorf("summary mismatch: %+v", doc)
	}
	if doc.ChunkCount != 3 {
		t.Errorf("expected 3 chunks, got %d", doc.ChunkCount)
	}
	if doc.UploadedAt.IsZero() {
		t.Error("uploaded_at not set")
	}
}

func TestAddDocument_Validation(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()

	tests := []struct {
		name    string
		docName string
		text    string
	}{
		{"Empty_Text", "a.txt", ""},
		{"Whitespace_Text", "a.txt", "   \n\t "},
		{"Empty_Name", "", "some words here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddDocument(ctx, tt.docName, tt.text, 10)
			if !kbError.IsKind(err, kbError.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAddDocument_EmbeddingFailure(t *testing.T) {
	ck, _ := chunker.NewWordWindowChunker(5, 1)
	idx, _ := vectorIndex.NewMemoryIndex(3)
	embedder := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	s := rag.NewService(ck, embedder, idx, synthesis.NewSynthesizer(&MockLLM{}), store.InitInMemoryAnswerCache())

	_, err := s.AddDocument(testContext(), "a.txt", "some words in here", 10)
	if !kbError.IsKind(err, kbError.KindExternalService) {
		t.Errorf("expected external service error, got %v", err)
	}

	// a failed ingest must leave the knowledge base empty
	if docs := s.ListDocuments(testContext()); len(docs) != 0 {
		t.Errorf("failed ingest left %d documents registered", len(docs))
	}
}

func TestSearch_Validation(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()
	if _, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if _, err := s.Search(ctx, "", 5); !kbError.IsKind(err, kbError.KindValidation) {
		t.Errorf("empty query: expected validation error, got %v", err)
	}
	if _, err := s.Search(ctx, "question", 0); !kbError.IsKind(err, kbError.KindValidation) {
		t.Errorf("top_k=0: expected validation error, got %v", err)
	}
	if _, err := s.Search(ctx, "question", -3); !kbError.IsKind(err, kbError.KindValidation) {
		t.Errorf("negative top_k: expected validation error, got %v", err)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	s := newTestService(t, &MockLLM{})

	_, err := s.Search(testContext(), "anything", 5)
	if !kbError.IsKind(err, kbError.KindEmptyIndex) {
		t.Errorf("expected empty index error, got %v", err)
	}
}

func TestSearch_FullFlow(t *testing.T) {
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, blocks []string) (string, error) {
			return "final answer", nil
		},
	}
	s := newTestService(t, provider)
	ctx := testContext()

	if _, err := s.AddDocument(ctx, "guide.txt", "alpha beta gamma delta epsilon", 30); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	result, err := s.Search(ctx, "alpha beta gamma delta epsilon", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Answer != "final answer" {
		t.Errorf("answer got %q", result.Answer)
	}
	if result.UsedFallback {
		t.Error("fallback flagged on a successful generation")
	}
	if len(result.Sources) != 1 || result.Sources[0] != "guide.txt" {
		t.Errorf("sources got %v", result.Sources)
	}
	if len(result.RetrievedChunks) == 0 {
		t.Fatal("no retrieved chunks attached")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence %v out of [0,1]", result.Confidence)
	}
	if result.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestSearch_GenerationDown_UsesFallback(t *testing.T) {
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, blocks []string) (string, error) {
			return "", errors.New("provider down")
		},
	}
	s := newTestService(t, provider)
	ctx := testContext()

	if _, err := s.AddDocument(ctx, "guide.txt", "alpha beta gamma delta epsilon", 30); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	result, err := s.Search(ctx, "alpha beta gamma delta epsilon", 5)
	if err != nil {
		t.Fatalf("Search must not fail when generation is down, got %v", err)
	}

	if !result.UsedFallback {
		t.Error("fallback usage not flagged")
	}
	top := result.RetrievedChunks[0]
	want := synthesis.Excerpt(top.Text, config.MaxChunkExcerptChars)
	if result.Answer != want {
		t.Errorf("fallback answer %q, want top chunk excerpt %q", result.Answer, want)
	}
	if result.Answer == "" {
		t.Error("fallback answer must be non-empty")
	}
}

func TestSearch_CacheHit(t *testing.T) {
	provider := &MockLLM{}
	s := newTestService(t, provider)
	ctx := testContext()

	if _, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if _, err := s.Search(ctx, "alpha beta", 5); err != nil {
		t.Fatalf("first Search failed: %v", err)
	}
	if _, err := s.Search(ctx, "alpha beta", 5); err != nil {
		t.Fatalf("second Search failed: %v", err)
	}

	if provider.CallCount != 1 {
		t.Errorf("expected one generation call thanks to the cache, got %d", provider.CallCount)
	}
}

func TestSearch_CacheIsPerTopK(t *testing.T) {
	provider := &MockLLM{}
	s := newTestService(t, provider)
	ctx := testContext()

	// 9 words -> 3 chunks, so top_k=5 and top_k=1 give different results
	if _, err := s.AddDocument(ctx, "a.txt", "one two three four five six seven eight nine", 44); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	wide, err := s.Search(ctx, "one two three", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(wide.RetrievedChunks) != 3 {
		t.Fatalf("expected 3 retrieved chunks, got %d", len(wide.RetrievedChunks))
	}

	narrow, err := s.Search(ctx, "one two three", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(narrow.RetrievedChunks) != 1 {
		t.Errorf("top_k=1 returned %d chunks, cache must not serve the wider result", len(narrow.RetrievedChunks))
	}
	if provider.CallCount != 2 {
		t.Errorf("expected a generation per distinct top_k, got %d calls", provider.CallCount)
	}
}

func TestRemoveDocument(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()

	keep, err := s.AddDocument(ctx, "keep.txt", "alpha beta gamma", 10)
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	drop, err := s.AddDocument(ctx, "drop.txt", "delta epsilon zeta", 10)
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if err := s.RemoveDocument(ctx, drop.Id); err != nil {
		t.Fatalf("RemoveDocument failed: %v", err)
	}

	docs := s.ListDocuments(ctx)
	if len(docs) != 1 || docs[0].Id != keep.Id {
		t.Errorf("surviving documents: %+v", docs)
	}

	result, err := s.Search(ctx, "delta epsilon zeta", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, chunk := range result.RetrievedChunks {
		if chunk.DocId == drop.Id {
			t.Errorf("search returned chunk from removed document: %s", chunk.ChunkId)
		}
	}

	if err := s.RemoveDocument(ctx, "ghost-id"); !kbError.IsKind(err, kbError.KindNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRemoveDocument_IndexFailureKeepsRegistry(t *testing.T) {
	ck, _ := chunker.NewWordWindowChunker(5, 1)
	idx, _ := vectorIndex.NewMemoryIndex(3)
	flaky := &FlakyIndex{
		Index: idx,
		OnRemove: func(ctx context.Context, docID string) error {
			return errors.New("backend unavailable")
		},
	}
	s := rag.NewService(ck, &MockEmbedder{}, flaky, synthesis.NewSynthesizer(&MockLLM{}), store.InitInMemoryAnswerCache())
	ctx := testContext()

	doc, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10)
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if err := s.RemoveDocument(ctx, doc.Id); err == nil {
		t.Fatal("expected the index failure to surface")
	}

	// the document must still be listed: its chunks are still searchable
	docs := s.ListDocuments(ctx)
	if len(docs) != 1 || docs[0].Id != doc.Id {
		t.Errorf("registry dropped the document despite the index keeping its chunks: %+v", docs)
	}
	if h := s.Health(ctx); h.ChunksIndexed == 0 {
		t.Error("chunk count zeroed while chunks remain in the index")
	}
}

func TestClearAll_IndexFailureKeepsRegistry(t *testing.T) {
	ck, _ := chunker.NewWordWindowChunker(5, 1)
	idx, _ := vectorIndex.NewMemoryIndex(3)
	flaky := &FlakyIndex{
		Index: idx,
		OnClear: func(ctx context.Context) error {
			return errors.New("backend unavailable")
		},
	}
	s := rag.NewService(ck, &MockEmbedder{}, flaky, synthesis.NewSynthesizer(&MockLLM{}), store.InitInMemoryAnswerCache())
	ctx := testContext()

	if _, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	if err := s.ClearAll(ctx); err == nil {
		t.Fatal("expected the index failure to surface")
	}
	if docs := s.ListDocuments(ctx); len(docs) != 1 {
		t.Errorf("registry cleared despite the index keeping its chunks: %+v", docs)
	}
}

func TestClearAll_ThenSearchFails(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()

	if _, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if _, err := s.Search(ctx, "alpha", 5); !kbError.IsKind(err, kbError.KindEmptyIndex) {
		t.Errorf("expected empty index error after clear, got %v", err)
	}
	if docs := s.ListDocuments(ctx); len(docs) != 0 {
		t.Errorf("documents survived ClearAll: %+v", docs)
	}
}

func TestHealth(t *testing.T) {
	s := newTestService(t, &MockLLM{})
	ctx := testContext()

	h := s.Health(ctx)
	if h.Status != "healthy" || h.DocumentsIndexed != 0 {
		t.Errorf("initial health: %+v", h)
	}

	if _, err := s.AddDocument(ctx, "a.txt", "alpha beta gamma", 10); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	h = s.Health(ctx)
	if h.DocumentsIndexed != 1 {
		t.Errorf("expected 1 indexed document, got %d", h.DocumentsIndexed)
	}
	if h.ChunksIndexed == 0 {
		t.Error("chunk count not reported")
	}
}
