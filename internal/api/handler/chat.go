package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/response"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// apologyText is returned in place of an assistant reply when completion fails.
const apologyText = "I'm sorry, I encountered an error while processing your request. Please try again."

// ChatHandler handles the chat completion endpoint
type ChatHandler struct {
	chatService *service.ChatService
	validate    *validator.Validate
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validator.New(),
	}
}

type chatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type chatRequest struct {
	Message             string        `json:"message" validate:"required"`
	ConversationHistory []chatMessage `json:"conversation_history"`
	SessionID           string        `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Chat processes a chat message and returns the assistant reply
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	history := make([]domain.Message, len(req.ConversationHistory))
	for i, m := range req.ConversationHistory {
		history[i] = domain.Message{
			Role:      domain.MessageRole(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}

	result, err := h.chatService.Complete(r.Context(), req.SessionID, req.Message, history)
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		// Failures still answer 200 with the canned apology so the
		// transcript shows the failure occurred.
		response.JSON(w, http.StatusOK, chatResponse{
			Response:  apologyText,
			Success:   false,
			Error:     err.Error(),
			SessionID: req.SessionID,
		})
		return
	}

	response.JSON(w, http.StatusOK, chatResponse{
		Response:  result.Response,
		Success:   true,
		SessionID: result.SessionID,
	})
}
