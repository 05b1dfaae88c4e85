package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/saathi-ai/saathi/internal/chunk"
	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/docs"
	"github.com/saathi-ai/saathi/internal/embed"
	"github.com/saathi-ai/saathi/internal/index"
	"github.com/saathi-ai/saathi/internal/ingest"
	"github.com/saathi-ai/saathi/internal/logger"
)

// Config represents the ingestion job configuration.
type Config struct {
	DocsDir       string
	IndexPath     string
	OllamaHost    string
	EmbedModel    string
	ChunkSize     int
	ChunkOverlap  int
	VectorBackend string
	MilvusAddr    string
	EmbedDim      int
}

// loadConfig loads configuration from environment variables.
func loadConfig() *Config {
	return &Config{
		DocsDir:       getEnvWithDefault("DOCS_DIR", "docs"),
		IndexPath:     getEnvWithDefault("INDEX_PATH", "db/index.json"),
		OllamaHost:    getEnvWithDefault("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:    getEnvWithDefault("EMBED_MODEL", "nomic-embed-text"),
		ChunkSize:     getEnvIntWithDefault("CHUNK_SIZE", chunk.DefaultSize),
		ChunkOverlap:  getEnvIntWithDefault("CHUNK_OVERLAP", chunk.DefaultOverlap),
		VectorBackend: getEnvWithDefault("VECTOR_BACKEND", "file"),
		MilvusAddr:    getEnvWithDefault("MILVUS_ADDR", "localhost:19530"),
		EmbedDim:      getEnvIntWithDefault("EMBED_DIM", 768),
	}
}

// getEnvWithDefault gets an environment variable or returns a default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntWithDefault gets an integer environment variable or returns a
// default value.
func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	docsDir := flag.String("docs", "", "Directory of PDF documents to ingest")
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	logger.Info("Starting ingestion...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	config := loadConfig()
	if *docsDir != "" {
		config.DocsDir = *docsDir
	}

	splitter, err := chunk.NewSplitter(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration: %v", err)
		os.Exit(1)
	}

	embedder, err := embed.NewOllamaEmbedder(config.OllamaHost, config.EmbedModel)
	if err != nil {
		logger.Error("Failed to initialize embedding service: %v", err)
		os.Exit(1)
	}

	// Cancel the run on SIGINT/SIGTERM so partial work is not left mid-write
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store core.VectorStore
	switch config.VectorBackend {
	case "milvus":
		milvusStore, err := index.NewMilvusStore(ctx, config.MilvusAddr, index.DefaultCollection, config.EmbedDim)
		if err != nil {
			logger.Error("Failed to connect to Milvus at %s: %v", config.MilvusAddr, err)
			os.Exit(1)
		}
		defer milvusStore.Close(context.Background())
		store = milvusStore
	case "file":
		store = index.New()
	default:
		logger.Error("Unknown VECTOR_BACKEND %q (expected file or milvus)", config.VectorBackend)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(docs.NewPDFLoader(), splitter, embedder, store)

	stats, err := pipeline.Run(ctx, config.DocsDir)
	if err != nil {
		logger.Error("Ingestion failed: %v", err)
		os.Exit(1)
	}

	switch s := store.(type) {
	case *index.MilvusStore:
		if err := s.Flush(ctx); err != nil {
			logger.Error("Failed to flush collection: %v", err)
			os.Exit(1)
		}
	case *index.Index:
		if err := s.Persist(config.IndexPath); err != nil {
			logger.Error("Failed to persist index to %s: %v", config.IndexPath, err)
			os.Exit(1)
		}
		logger.Info("Index written to %s", config.IndexPath)
	}

	logger.Info("Ingested %d document(s) into %d chunk(s) (%d document(s) skipped, %d chunk(s) dropped)",
		stats.Documents, stats.Chunks, stats.Skipped, stats.EmbedSkipped)
}
