package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - these mirror the word-window parameters the index was built
	//with, changing them invalidates previously ingested documents
	ChunkWindowWords  = 500
	ChunkOverlapWords = 50

	//embeddings
	//the dimension is fixed for the whole process, ingest and query must agree
	EmbeddingOutputDimensionality int32 = 384
	GoogleEmbeddingModel                = "gemini-embedding-001"
	OpenAIEmbeddingModel                = "text-embedding-3-small"

	//confidence scoring - heuristic constants, do not recalibrate
	//without sign-off
	ConfidenceMaxRank      = 5
	ConfidenceBoostFactor  = 1.15
	ConfidenceBoostCutoff  = 0.7

	//answer synthesis
	GeminiModelName         = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIChatModel         = "gpt-3.5-turbo"
	GenerationTimeout       = 30 * time.Second
	EmbeddingTimeout        = 30 * time.Second
	MaxChunkExcerptChars    = 400
	MaxContextChars         = 6000
	SystemPrompt            = "Answer questions concisely based on the provided context."
	ModelTemperature  float32 = 0.5

	//retrieval
	DefaultTopK = 5

	//upload handling
	MaxUploadBytes  = 16 << 20
	UploadDirectory = "temporary_data"

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//http client pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//vector index backend selection: "memory" unless QDRANT_HOST is set
	QdrantCollectionName   = "kb-chunks"
	QdrantPort             = 6334 //grpc
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisAnswerCacheDB  = 0
	RedisAnswerCacheTTL = 1 * time.Hour
)

// credentials are only ever read from the environment, never from flags or
// files, so they cannot leak into process listings or committed config
var (
	GoogleAPIKey  = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey  = os.Getenv("OPENAI_API_KEY")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
)
