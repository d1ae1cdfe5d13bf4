package handler

import (
	"net/http"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/response"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
