package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrSessionNotFound is returned by stores when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

const defaultTitle = "New Chat"

// maxTitleLength bounds session titles derived from message content.
const maxTitleLength = 60

// Session represents a server-persisted conversation thread
type Session struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// SessionSummary is the listing projection of a session
type SessionSummary struct {
	ID           string    `json:"session_id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary derives the listing projection from a full session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Title:        TitleFor(s.Messages),
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
	}
}

// TitleFor returns the session title derived from its messages: the first
// non-empty user message truncated to 60 characters, or "New Chat".
func TitleFor(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
			// Truncate by runes so a multibyte character is never split.
			if runes := []rune(m.Content); len(runes) > maxTitleLength {
				return string(runes[:maxTitleLength]) + "..."
			}
			return m.Content
		}
	}
	return defaultTitle
}

// SessionStore defines the interface for session persistence
type SessionStore interface {
	// Create persists a fresh empty session and returns it.
	Create(ctx context.Context) (*Session, error)

	// Get loads a session with its full message list.
	Get(ctx context.Context, id string) (*Session, error)

	// Append adds a message to an existing session.
	Append(ctx context.Context, id string, msg Message) error

	// List returns summaries for all sessions, newest first.
	List(ctx context.Context) ([]SessionSummary, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}
