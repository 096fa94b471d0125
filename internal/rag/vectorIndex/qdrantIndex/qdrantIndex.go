package qdrantIndex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

// Qdrant-backed implementation of vectorIndex.Index for corpora that
// outgrow the in-memory scan. Qdrant ranks by the same cosine metric;
// exact-tie ordering is then backend-defined, which is why the contract
// tests run against the memory index.

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

type IndexHolder struct {
	client     *qdrant.Client
	collection string
}

func GetQdrantIndex(ctx context.Context) vectorIndex.Index {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant Index")
		qdrantInstance = newClient(ctx)
		if qdrantInstance != nil {
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &IndexHolder{client: qdrantInstance, collection: config.QdrantCollectionName}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if err != nil {
		port = config.QdrantPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time: config.QdrantKeepAliveTimeout,
			}),
		},
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err := ensureCollection(ctx, client); err != nil {
		logger.Error("could not create collection", "collectionName", config.QdrantCollectionName, "error", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, client *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := client.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func ensureCollection(ctx context.Context, client *qdrant.Client) error {
	exists, err := client.CollectionExists(ctx, config.QdrantCollectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: config.QdrantCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.EmbeddingOutputDimensionality),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (h *IndexHolder) Insert(ctx context.Context, chunks []kbModel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		// point IDs must be UUIDs, chunk IDs are not - derive one
		// deterministically so re-inserting a chunk overwrites it
		pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunk.ChunkId)).String()
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":     chunk.Text,
				"doc_id":      chunk.DocId,
				"doc_name":    chunk.DocName,
				"chunk_id":    chunk.ChunkId,
				"chunk_order": int64(chunk.Order),
			}),
		}
	}

	_, err := h.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: h.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (h *IndexHolder) Remove(ctx context.Context, docID string) error {
	_, err := h.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: h.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_id", docID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (h *IndexHolder) Clear(ctx context.Context) error {
	if err := h.client.DeleteCollection(ctx, h.collection); err != nil {
		return fmt.Errorf("qdrant drop collection failed: %w", err)
	}
	return ensureCollection(ctx, h.client)
}

func (h *IndexHolder) Search(ctx context.Context, queryVector []float32, k int) ([]vectorIndex.Match, error) {
	if k <= 0 {
		return nil, errors.New("top_k must be positive")
	}

	result, err := h.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: h.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]vectorIndex.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorIndex.Match{
			Chunk: kbModel.DocChunk{
				ChunkId: hit.Payload["chunk_id"].GetStringValue(),
				DocId:   hit.Payload["doc_id"].GetStringValue(),
				DocName: hit.Payload["doc_name"].GetStringValue(),
				Text:    hit.Payload["content"].GetStringValue(),
				Order:   int(hit.Payload["chunk_order"].GetIntegerValue()),
			},
			Score: float64(hit.Score),
		})
	}
	return matches, nil
}

func (h *IndexHolder) ChunkCount(ctx context.Context) (int, error) {
	count, err := h.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: h.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(count), nil
}
