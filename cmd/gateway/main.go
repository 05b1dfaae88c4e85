package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saathi-ai/saathi/internal/auth"
	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/embed"
	"github.com/saathi-ai/saathi/internal/engine"
	"github.com/saathi-ai/saathi/internal/gateway"
	"github.com/saathi-ai/saathi/internal/index"
	"github.com/saathi-ai/saathi/internal/lang"
	"github.com/saathi-ai/saathi/internal/llm"
	"github.com/saathi-ai/saathi/internal/logger"
	"github.com/saathi-ai/saathi/internal/rag"
	"github.com/saathi-ai/saathi/internal/speech"
	"github.com/saathi-ai/saathi/internal/telegram"
)

// Config represents the gateway configuration.
type Config struct {
	Port            string
	RasaURL         string
	IndexPath       string
	OllamaHost      string
	EmbedModel      string
	GenModel        string
	TopK            int
	VectorBackend   string
	MilvusAddr      string
	EmbedDim        int
	CredentialsFile string
	TelegramToken   string
	AdminUserIDs    string
	AllowedUserIDs  string
}

// loadConfig loads configuration from environment variables.
func loadConfig() *Config {
	return &Config{
		Port:            getEnvWithDefault("PORT", "8000"),
		RasaURL:         getEnvWithDefault("RASA_URL", "http://localhost:5005/webhooks/rest/webhook"),
		IndexPath:       getEnvWithDefault("INDEX_PATH", "db/index.json"),
		OllamaHost:      getEnvWithDefault("OLLAMA_HOST", "http://localhost:11434"),
		EmbedModel:      getEnvWithDefault("EMBED_MODEL", "nomic-embed-text"),
		GenModel:        getEnvWithDefault("GEN_MODEL", "llama3"),
		TopK:            getEnvIntWithDefault("TOP_K", rag.DefaultTopK),
		VectorBackend:   getEnvWithDefault("VECTOR_BACKEND", "file"),
		MilvusAddr:      getEnvWithDefault("MILVUS_ADDR", "localhost:19530"),
		EmbedDim:        getEnvIntWithDefault("EMBED_DIM", 768),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		TelegramToken:   os.Getenv("TG_BOT_TOKEN"),
		AdminUserIDs:    os.Getenv("ADMIN_USER_IDS"),
		AllowedUserIDs:  os.Getenv("ALLOWED_USER_IDS"),
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
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	logger.Info("Starting gateway...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	config := loadConfig()

	if logger.IsDebugEnabled() {
		logger.Debug("Configuration loaded: Port=%s, RasaURL=%s, VectorBackend=%s, IndexPath=%s, TelegramToken=%v",
			config.Port, config.RasaURL, config.VectorBackend, config.IndexPath, config.TelegramToken != "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Initializing services...")

	// Retrieval side: embedder, generator and the vector store
	embedder, err := embed.NewOllamaEmbedder(config.OllamaHost, config.EmbedModel)
	if err != nil {
		logger.Error("Failed to initialize embedding service: %v", err)
		os.Exit(1)
	}

	generator, err := llm.NewOllamaGenerator(config.OllamaHost, config.GenModel)
	if err != nil {
		logger.Error("Failed to initialize generation service: %v", err)
		os.Exit(1)
	}

	var store core.VectorStore
	indexInfo := gateway.IndexInfo{Backend: config.VectorBackend}
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
		fileIndex, err := index.Load(config.IndexPath)
		if err != nil {
			logger.Error("Failed to load index from %s (run the ingest job first): %v", config.IndexPath, err)
			os.Exit(1)
		}
		logger.Info("Loaded index with %d chunk(s), dimension %d", fileIndex.Len(), fileIndex.Dimension())
		indexInfo.Chunks = fileIndex.Len()
		store = fileIndex
	default:
		logger.Error("Unknown VECTOR_BACKEND %q (expected file or milvus)", config.VectorBackend)
		os.Exit(1)
	}

	answerer := rag.NewAnswerer(embedder, store, generator, config.TopK)

	// Language side: both services are optional; the gateway degrades to
	// English-only text when they are missing
	var translateSvc core.TranslateService
	if translator, err := lang.NewGoogleTranslator(ctx, config.CredentialsFile); err != nil {
		logger.Warn("Translation unavailable, running English-only: %v", err)
	} else {
		defer translator.Close()
		translateSvc = translator
	}

	var speechSvc core.SpeechService
	if recognizer, err := speech.NewGoogleSpeech(ctx, config.CredentialsFile); err != nil {
		logger.Warn("Speech recognition unavailable, voice input disabled: %v", err)
	} else {
		defer recognizer.Close()
		speechSvc = recognizer
	}

	dispatcher := gateway.NewDispatcher(
		lang.NewNormalizer(translateSvc),
		speech.NewTranscriber(speechSvc),
		engine.NewRasaEngine(config.RasaURL),
	)

	server := gateway.NewServer(dispatcher, answerer, indexInfo)
	httpServer := &http.Server{
		Addr:    ":" + config.Port,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("Listening on :%s", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	// Optional Telegram front-end
	if config.TelegramToken != "" {
		policy := auth.NewPolicyService(config.AdminUserIDs, config.AllowedUserIDs)
		bot, err := telegram.NewBot(config.TelegramToken, dispatcher, policy)
		if err != nil {
			logger.Error("Failed to initialize Telegram bot: %v", err)
			os.Exit(1)
		}
		logger.Info("Starting Telegram bot...")
		go bot.Start(ctx)
	}

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("Shutting down gateway...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}

	logger.Info("Gateway has been shut down")
}
