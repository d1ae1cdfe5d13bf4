package api

import (
	"net/http"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/handler"
	customMiddleware "github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/middleware"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/config"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/redis"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/service"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	store domain.SessionStore,
	llmRouter *llm.Router,
	processor *upload.Processor,
	limiter *redis.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	chatService := service.NewChatService(store, llmRouter)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(chatService)
	uploadHandler := handler.NewUploadHandler(processor, chatService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Post("/", sessionHandler.Create)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Get("/export", sessionHandler.Export)
			})
		})

		// Completion and upload get rate limited when Redis is enabled.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(limiter)
				r.Use(rateLimitMiddleware.Limit)
			}

			r.Post("/chat", chatHandler.Chat)
			r.Post("/upload", uploadHandler.Upload)
		})
	})

	return r
}
