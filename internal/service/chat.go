package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/rs/zerolog/log"
)

// ChatService orchestrates chat completions around the session store
type ChatService struct {
	store     domain.SessionStore
	llmRouter *llm.Router
}

// NewChatService creates a new chat service
func NewChatService(store domain.SessionStore, llmRouter *llm.Router) *ChatService {
	return &ChatService{
		store:     store,
		llmRouter: llmRouter,
	}
}

// ChatResult contains the assistant reply and the session it was stored under
type ChatResult struct {
	Response  string
	SessionID string
}

// Complete processes one chat turn: it lazily creates a session when none is
// given, persists the user message, asks the default provider for a reply
// using the client-supplied conversation context, and persists the reply.
func (s *ChatService) Complete(ctx context.Context, sessionID, message string, history []domain.Message) (*ChatResult, error) {
	if sessionID == "" {
		session, err := s.store.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		sessionID = session.ID
	}

	if err := s.store.Append(ctx, sessionID, domain.NewMessage(domain.RoleUser, message)); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: string(domain.RoleUser), Content: message})

	provider, err := s.llmRouter.GetProvider("")
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM provider: %w", err)
	}

	resp, err := provider.Complete(ctx, llm.Request{Messages: messages}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	log.Debug().
		Str("session_id", sessionID).
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("completion received")

	if err := s.store.Append(ctx, sessionID, domain.NewMessage(domain.RoleAssistant, resp.Text)); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save assistant message")
	}

	return &ChatResult{Response: resp.Text, SessionID: sessionID}, nil
}

// AttachUpload records an uploaded file as a user message in the session
func (s *ChatService) AttachUpload(ctx context.Context, sessionID, filename, preview string) error {
	content := fmt.Sprintf("📎 Uploaded file: %s\n\n%s", filename, preview)
	return s.store.Append(ctx, sessionID, domain.NewMessage(domain.RoleUser, content))
}

// CreateSession creates a new empty session
func (s *ChatService) CreateSession(ctx context.Context) (*domain.Session, error) {
	return s.store.Create(ctx)
}

// GetSession retrieves a session with its messages
func (s *ChatService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.Get(ctx, id)
}

// ListSessions lists session summaries, newest first
func (s *ChatService) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.store.List(ctx)
}

// DeleteSession deletes a session
func (s *ChatService) DeleteSession(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Export renders a session as a plain-text transcript
func (s *ChatService) Export(ctx context.Context, id string) (string, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Chat Session: %s\n", domain.TitleFor(session.Messages))
	fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "Messages: %d\n", len(session.Messages))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, msg := range session.Messages {
		role := "AI"
		if msg.Role == domain.RoleUser {
			role = "You"
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", msg.Timestamp.Format("2006-01-02T15:04:05"), role, msg.Content)
	}
	return b.String(), nil
}
