// @title           Knowledge Base API
// @version         1.0
// @description     This API indexes documents and answers questions over them with retrieval-augmented generation.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nkodali/KBaseAPI/internal/config"
	"github.com/nkodali/KBaseAPI/internal/data/store"
	"github.com/nkodali/KBaseAPI/internal/handlers"
	"github.com/nkodali/KBaseAPI/internal/rag"
	"github.com/nkodali/KBaseAPI/internal/rag/chunker"
	"github.com/nkodali/KBaseAPI/internal/rag/embedding"
	"github.com/nkodali/KBaseAPI/internal/rag/embedding/googleEmbedding"
	"github.com/nkodali/KBaseAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/nkodali/KBaseAPI/internal/rag/llm"
	"github.com/nkodali/KBaseAPI/internal/rag/llm/gemini"
	"github.com/nkodali/KBaseAPI/internal/rag/llm/openaiLLM"
	"github.com/nkodali/KBaseAPI/internal/rag/synthesis"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex"
	"github.com/nkodali/KBaseAPI/internal/rag/vectorIndex/qdrantIndex"
	"github.com/nkodali/KBaseAPI/internal/server"
	"github.com/nkodali/KBaseAPI/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//answer cache - redis when reachable, process-local map otherwise
	var answerCache store.AnswerCache
	if redisCache := store.GetRedisAnswerCache(serviceContext); redisCache != nil {
		answerCache = redisCache
	} else {
		logger.Error("Redis is offline, falling back to in-memory answer cache")
		answerCache = store.InitInMemoryAnswerCache()
	}

	//the embedder is mandatory - nothing works without vectors
	var embedder embedding.Embedder
	switch {
	case config.GoogleAPIKey != "":
		embedder = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey)
	case config.OpenAIAPIKey != "":
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	if embedder == nil {
		logger.Error("No embedding provider available. Set GOOGLE_API_KEY or OPENAI_API_KEY. Shutting down.")
		return
	}

	//the generation provider is optional - searches degrade to extractive
	//answers when it is missing
	var llmProvider llm.Provider
	switch {
	case config.GoogleAPIKey != "":
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey)
	case config.OpenAIAPIKey != "":
		llmProvider = openaiLLM.GetOpenAIClient(config.OpenAIChatModel, config.OpenAIAPIKey)
	}
	if llmProvider == nil {
		logger.Warn("No generation provider available, answers will be extractive excerpts")
	}

	index := qdrantIndex.GetQdrantIndex(serviceContext)
	if index == nil {
		logger.Info("Using in-memory vector index", "dimension", embedder.Dimension())
		memoryIndex, err := vectorIndex.NewMemoryIndex(embedder.Dimension())
		if err != nil {
			logger.Error("Could not build vector index", "error", err)
			return
		}
		index = memoryIndex
	}

	wordChunker, err := chunker.NewWordWindowChunker(config.ChunkWindowWords, config.ChunkOverlapWords)
	if err != nil {
		logger.Error("Invalid chunking configuration", "error", err)
		return
	}

	kbService := rag.NewService(wordChunker, embedder, index, synthesis.NewSynthesizer(llmProvider), answerCache)
	handlers.InitKBHandler(kbService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
