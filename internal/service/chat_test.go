package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(store *MockSessionStore, provider *StubProvider) *ChatService {
	router := llm.NewRouter("stub")
	router.RegisterProvider(provider)
	return NewChatService(store, router)
}

func userMessage(content string) any {
	return mock.MatchedBy(func(m domain.Message) bool {
		return m.Role == domain.RoleUser && m.Content == content
	})
}

func assistantMessage(content string) any {
	return mock.MatchedBy(func(m domain.Message) bool {
		return m.Role == domain.RoleAssistant && m.Content == content
	})
}

func TestChatService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing session", func(t *testing.T) {
		store := new(MockSessionStore)
		provider := &StubProvider{Reply: "Goroutines are cheap."}
		svc := newTestService(store, provider)

		store.On("Append", ctx, "sess-1", userMessage("Tell me about goroutines")).Return(nil)
		store.On("Append", ctx, "sess-1", assistantMessage("Goroutines are cheap.")).Return(nil)

		result, err := svc.Complete(ctx, "sess-1", "Tell me about goroutines", nil)
		require.NoError(t, err)
		assert.Equal(t, "Goroutines are cheap.", result.Response)
		assert.Equal(t, "sess-1", result.SessionID)

		store.AssertExpectations(t)
	})

	t.Run("lazily creates session", func(t *testing.T) {
		store := new(MockSessionStore)
		provider := &StubProvider{Reply: "Hello!"}
		svc := newTestService(store, provider)

		store.On("Create", ctx).Return(&domain.Session{ID: "fresh"}, nil)
		store.On("Append", ctx, "fresh", mock.Anything).Return(nil)

		result, err := svc.Complete(ctx, "", "Hi", nil)
		require.NoError(t, err)
		assert.Equal(t, "fresh", result.SessionID)

		store.AssertExpectations(t)
	})

	t.Run("history precedes current message", func(t *testing.T) {
		store := new(MockSessionStore)
		provider := &StubProvider{Reply: "ok"}
		svc := newTestService(store, provider)

		store.On("Append", ctx, "sess-1", mock.Anything).Return(nil)

		history := []domain.Message{
			domain.NewMessage(domain.RoleUser, "earlier question"),
			domain.NewMessage(domain.RoleAssistant, "earlier answer"),
		}
		_, err := svc.Complete(ctx, "sess-1", "follow-up", history)
		require.NoError(t, err)

		msgs := provider.LastRequest.Messages
		require.Len(t, msgs, 3)
		assert.Equal(t, "earlier question", msgs[0].Content)
		assert.Equal(t, "earlier answer", msgs[1].Content)
		assert.Equal(t, "follow-up", msgs[2].Content)
		assert.Equal(t, "user", msgs[2].Role)
	})

	t.Run("provider failure", func(t *testing.T) {
		store := new(MockSessionStore)
		provider := &StubProvider{Err: errors.New("upstream timeout")}
		svc := newTestService(store, provider)

		store.On("Append", ctx, "sess-1", mock.Anything).Return(nil)

		_, err := svc.Complete(ctx, "sess-1", "Hi", nil)
		assert.ErrorContains(t, err, "failed to generate response")
	})

	t.Run("assistant save failure is not fatal", func(t *testing.T) {
		store := new(MockSessionStore)
		provider := &StubProvider{Reply: "answer"}
		svc := newTestService(store, provider)

		store.On("Append", ctx, "sess-1", userMessage("Hi")).Return(nil)
		store.On("Append", ctx, "sess-1", assistantMessage("answer")).Return(errors.New("disk full"))

		result, err := svc.Complete(ctx, "sess-1", "Hi", nil)
		require.NoError(t, err)
		assert.Equal(t, "answer", result.Response)
	})
}

func TestChatService_AttachUpload(t *testing.T) {
	store := new(MockSessionStore)
	svc := newTestService(store, &StubProvider{})
	ctx := context.Background()

	store.On("Append", ctx, "sess-1", mock.MatchedBy(func(m domain.Message) bool {
		return m.Role == domain.RoleUser &&
			strings.HasPrefix(m.Content, "📎 Uploaded file: notes.txt\n\n") &&
			strings.Contains(m.Content, "File content")
	})).Return(nil)

	err := svc.AttachUpload(ctx, "sess-1", "notes.txt", "File content:\n\nhello")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestChatService_Export(t *testing.T) {
	store := new(MockSessionStore)
	svc := newTestService(store, &StubProvider{})
	ctx := context.Background()

	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	store.On("Get", ctx, "sess-1").Return(&domain.Session{
		ID:        "sess-1",
		CreatedAt: created,
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "What is a mutex?", Timestamp: created},
			{Role: domain.RoleAssistant, Content: "A mutual exclusion lock.", Timestamp: created.Add(time.Second)},
		},
	}, nil)

	text, err := svc.Export(ctx, "sess-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "Chat Session: What is a mutex?\n"))
	assert.Contains(t, text, "Created: 2025-03-14T09:30:00\n")
	assert.Contains(t, text, "Messages: 2\n")
	assert.Contains(t, text, strings.Repeat("=", 50))
	assert.Contains(t, text, "[2025-03-14T09:30:00] You:\nWhat is a mutex?\n\n")
	assert.Contains(t, text, "[2025-03-14T09:30:01] AI:\nA mutual exclusion lock.\n\n")
}

func TestChatService_ExportNotFound(t *testing.T) {
	store := new(MockSessionStore)
	svc := newTestService(store, &StubProvider{})
	ctx := context.Background()

	store.On("Get", ctx, "missing").Return(nil, domain.ErrSessionNotFound)

	_, err := svc.Export(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
