package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/config"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm/gemini"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm/groq"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm/ollama"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/redis"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/store/file"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/store/postgres"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/store/sqlite"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/upload"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Backend).
		Msg("Starting chat API server")

	// Initialize session store
	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer store.Close()

	// Initialize Redis (optional, enables rate limiting)
	var limiter *redis.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		limiter = redis.NewRateLimiter(redisClient,
			cfg.Redis.RateLimit.RequestsPerMinute, cfg.Redis.RateLimit.Burst)
	}

	// Register LLM providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	llmRouter.RegisterProvider(groq.NewProvider(cfg.LLM.Groq.APIKey, cfg.LLM.Groq.BaseURL, cfg.LLM.Groq.Model))
	llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))

	for _, name := range llmRouter.ListProviders() {
		log.Info().Str("provider", name).Msg("LLM provider registered")
	}

	// Initialize upload processor
	processor, err := upload.NewProcessor(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload directory")
	}

	// Initialize router
	router := api.NewRouter(cfg, store, llmRouter, processor, limiter)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func newStore(cfg *config.Config) (domain.SessionStore, error) {
	switch cfg.Store.Backend {
	case "file":
		return file.New(cfg.Store.Dir)
	case "sqlite":
		return sqlite.New(context.Background(), cfg.Store.Path)
	case "postgres":
		return postgres.New(context.Background(), cfg.Store.Postgres)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
