package handler

import (
	"errors"
	"net/http"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/response"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles session CRUD and export endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

type sessionResponse struct {
	Success     bool            `json:"success"`
	SessionID   string          `json:"session_id,omitempty"`
	SessionData *domain.Session `json:"session_data,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type sessionListResponse struct {
	Sessions []domain.SessionSummary `json:"sessions"`
}

// Create creates a new chat session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.CreateSession(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		response.JSON(w, http.StatusOK, sessionResponse{Success: false, Error: err.Error()})
		return
	}

	response.JSON(w, http.StatusOK, sessionResponse{Success: true, SessionID: session.ID})
}

// List returns summaries for all sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	response.JSON(w, http.StatusOK, sessionListResponse{Sessions: sessions})
}

// Get returns a session with its full message list
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatService.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.Error(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session")
		response.JSON(w, http.StatusOK, sessionResponse{Success: false, Error: err.Error()})
		return
	}

	response.JSON(w, http.StatusOK, sessionResponse{
		Success:     true,
		SessionID:   session.ID,
		SessionData: session,
	})
}

// Delete removes a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.Error(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		response.Error(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session deleted successfully",
	})
}

// Export returns the session transcript as plain text
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	text, err := h.chatService.Export(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.Error(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to export session")
		response.Error(w, http.StatusInternalServerError, "Failed to export session")
		return
	}

	response.PlainText(w, http.StatusOK, text)
}
