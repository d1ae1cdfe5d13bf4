package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer captures everything the controller draws
type recordingRenderer struct {
	mu            sync.Mutex
	transcripts   [][]Entry
	directories   [][]SessionInfo
	activeIDs     []string
	notifications []string
	focusCount    int
	confirmAnswer bool
}

func (r *recordingRenderer) RenderTranscript(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts = append(r.transcripts, entries)
}

func (r *recordingRenderer) RenderDirectory(sessions []SessionInfo, activeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directories = append(r.directories, sessions)
	r.activeIDs = append(r.activeIDs, activeID)
}

func (r *recordingRenderer) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, message)
}

func (r *recordingRenderer) FocusInput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focusCount++
}

func (r *recordingRenderer) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmAnswer
}

func (r *recordingRenderer) lastTranscript() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transcripts) == 0 {
		return nil
	}
	return r.transcripts[len(r.transcripts)-1]
}

func (r *recordingRenderer) notified() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// fakeBackend is an in-memory chat server speaking the wire protocol
type fakeBackend struct {
	mu          sync.Mutex
	nextID      int
	order       []string
	sessions    map[string][]domain.Message
	chatCalls   int
	lastMessage string
	lastHistory []HistoryMessage
	blockChat   chan struct{}
	failChat    bool
	rejectChat  bool
	failUpload  bool
	uploadCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sessions: map[string][]domain.Message{}}
}

func (b *fakeBackend) createSession() string {
	b.nextID++
	id := fmt.Sprintf("sess-%d", b.nextID)
	b.order = append(b.order, id)
	b.sessions[id] = []domain.Message{}
	return id
}

func (b *fakeBackend) handler() http.Handler {
	mux := chi.NewRouter()

	mux.MethodFunc("POST", "/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message             string           `json:"message"`
			ConversationHistory []HistoryMessage `json:"conversation_history"`
			SessionID           string           `json:"session_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		block := b.blockChat
		b.mu.Unlock()
		if block != nil {
			<-block
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		b.chatCalls++
		b.lastMessage = req.Message
		b.lastHistory = req.ConversationHistory

		if b.failChat {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
			return
		}
		if b.rejectChat {
			json.NewEncoder(w).Encode(ChatReply{
				Success:  false,
				Response: "I'm sorry, I encountered an error while processing your request. Please try again.",
				Error:    "provider exploded",
			})
			return
		}

		id := req.SessionID
		if id == "" {
			id = b.createSession()
		}
		b.sessions[id] = append(b.sessions[id],
			domain.NewMessage(domain.RoleUser, req.Message),
			domain.NewMessage(domain.RoleAssistant, "echo: "+req.Message),
		)
		json.NewEncoder(w).Encode(ChatReply{
			Success:   true,
			Response:  "echo: " + req.Message,
			SessionID: id,
		})
	})

	mux.MethodFunc("POST", "/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		id := b.createSession()
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"success": true, "session_id": id})
	})

	mux.MethodFunc("GET", "/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		sessions := []map[string]any{}
		for i := len(b.order) - 1; i >= 0; i-- {
			id := b.order[i]
			sessions = append(sessions, map[string]any{
				"session_id":    id,
				"title":         "title of " + id,
				"message_count": len(b.sessions[id]),
				"created_at":    time.Now().UTC(),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"sessions": sessions})
	})

	mux.MethodFunc("GET", "/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		msgs, ok := b.sessions[chi.URLParam(r, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Session not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"session_id":   chi.URLParam(r, "id"),
			"session_data": map[string]any{"messages": msgs},
		})
	})

	mux.MethodFunc("DELETE", "/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := chi.URLParam(r, "id")
		if _, ok := b.sessions[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Session not found"})
			return
		}
		delete(b.sessions, id)
		for i, sid := range b.order {
			if sid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	mux.MethodFunc("GET", "/api/sessions/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "Chat Session: %s\n", chi.URLParam(r, "id"))
	})

	mux.MethodFunc("POST", "/api/upload", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.uploadCalls++
		if b.failUpload {
			json.NewEncoder(w).Encode(UploadReply{Success: false, Error: "disk full"})
			return
		}
		r.ParseMultipartForm(1 << 20)
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "no file uploaded"})
			return
		}
		json.NewEncoder(w).Encode(UploadReply{
			Success:        true,
			Filename:       header.Filename,
			FileID:         header.Filename,
			ContentPreview: "File content:\n\nhello",
		})
	})

	return mux
}

func newTestController(t *testing.T) (*Controller, *recordingRenderer, *fakeBackend) {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	renderer := &recordingRenderer{confirmAnswer: true}
	ctrl := NewController(NewAPI(server.URL), renderer)
	ctrl.followUpDelay = 0
	return ctrl, renderer, backend
}

func TestController_SendMessage(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	ctrl.SendMessage(ctx, "  hello there  ")

	entries := renderer.lastTranscript()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.Equal(t, "hello there", entries[0].Content)
	assert.Equal(t, domain.RoleAssistant, entries[1].Role)
	assert.Equal(t, "echo: hello there", entries[1].Content)

	// The server assigned a session on first contact.
	assert.Equal(t, "sess-1", ctrl.SessionID())

	// The message itself travels in the message field, not the history.
	assert.Equal(t, "hello there", backend.lastMessage)
	assert.Empty(t, backend.lastHistory)

	// Directory refreshed after the exchange, creation time included.
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	require.NotEmpty(t, renderer.directories)
	lastDir := renderer.directories[len(renderer.directories)-1]
	require.Len(t, lastDir, 1)
	assert.False(t, lastDir[0].CreatedAt.IsZero())
	assert.Equal(t, "sess-1", renderer.activeIDs[len(renderer.activeIDs)-1])
	assert.GreaterOrEqual(t, renderer.focusCount, 1)
}

func TestController_SendMessageEmptyInputIsNoOp(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	ctrl.SendMessage(ctx, "")
	ctrl.SendMessage(ctx, "   \n\t ")

	assert.Zero(t, backend.chatCalls)
	assert.Empty(t, renderer.transcripts)
}

func TestController_SendMessageWhileBusyIsIgnored(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	release := make(chan struct{})
	backend.blockChat = release

	done := make(chan struct{})
	go func() {
		ctrl.SendMessage(ctx, "first")
		close(done)
	}()

	// Wait until the first send is visibly in flight.
	require.Eventually(t, func() bool {
		return len(renderer.lastTranscript()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctrl.SendMessage(ctx, "second")

	close(release)
	<-done

	assert.Equal(t, 1, backend.chatCalls)
	assert.Equal(t, "first", backend.lastMessage)

	entries := renderer.lastTranscript()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Content)
}

func TestController_SendMessageContextWindow(t *testing.T) {
	ctrl, _, backend := newTestController(t)
	ctx := context.Background()

	// Seed a long conversation.
	for i := 0; i < 8; i++ {
		ctrl.transcript.Append(domain.RoleUser, fmt.Sprintf("q%d", i))
		ctrl.transcript.Append(domain.RoleAssistant, fmt.Sprintf("a%d", i))
	}

	ctrl.SendMessage(ctx, "latest")

	// 16 prior messages get windowed down to the last 10, captured before
	// the outgoing message was appended.
	require.Len(t, backend.lastHistory, 10)
	assert.Equal(t, "q3", backend.lastHistory[0].Content)
	assert.Equal(t, "a7", backend.lastHistory[9].Content)
	assert.Equal(t, "latest", backend.lastMessage)
}

func TestController_SendMessageFailure(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	backend.failChat = true
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")

	entries := renderer.lastTranscript()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.Equal(t, domain.RoleAssistant, entries[1].Role)
	assert.Equal(t, sendFailureText, entries[1].Content)

	notifications := renderer.notified()
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0], "Failed to send message")
}

func TestController_SendMessageRejectedByServer(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	backend.rejectChat = true
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")

	// A 200 with success false is still a failure: the fixed error entry
	// and a notification both appear.
	entries := renderer.lastTranscript()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.Equal(t, domain.RoleAssistant, entries[1].Role)
	assert.Equal(t, sendFailureText, entries[1].Content)

	notifications := renderer.notified()
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0], "provider exploded")

	// No session adoption or directory refresh for a failed exchange.
	assert.Empty(t, ctrl.SessionID())
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	assert.Empty(t, renderer.directories)
}

func TestController_CreateSessionClearsTranscript(t *testing.T) {
	ctrl, renderer, _ := newTestController(t)
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")
	require.Len(t, renderer.lastTranscript(), 2)

	require.NoError(t, ctrl.CreateSession(ctx))

	assert.Empty(t, renderer.lastTranscript())
	assert.Equal(t, "sess-2", ctrl.SessionID())
}

func TestController_SwitchSession(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")
	first := ctrl.SessionID()

	require.NoError(t, ctrl.CreateSession(ctx))
	require.NotEqual(t, first, ctrl.SessionID())

	require.NoError(t, ctrl.SwitchSession(ctx, first))
	assert.Equal(t, first, ctrl.SessionID())

	entries := renderer.lastTranscript()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Content)
	assert.Equal(t, "echo: hello", entries[1].Content)

	// Switching to the active session is a no-op.
	calls := backend.chatCalls
	transcripts := len(renderer.transcripts)
	require.NoError(t, ctrl.SwitchSession(ctx, first))
	assert.Equal(t, calls, backend.chatCalls)
	assert.Equal(t, transcripts, len(renderer.transcripts))
}

func TestController_DeleteSessionDeclined(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	renderer.confirmAnswer = false
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")
	id := ctrl.SessionID()

	require.NoError(t, ctrl.DeleteSession(ctx, id))

	// Declining the prompt leaves the session alone.
	backend.mu.Lock()
	_, exists := backend.sessions[id]
	backend.mu.Unlock()
	assert.True(t, exists)
	assert.Equal(t, id, ctrl.SessionID())
}

func TestController_DeleteActiveSessionStartsFresh(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	ctrl.SendMessage(ctx, "hello")
	id := ctrl.SessionID()

	require.NoError(t, ctrl.DeleteSession(ctx, id))

	backend.mu.Lock()
	_, exists := backend.sessions[id]
	backend.mu.Unlock()
	assert.False(t, exists)

	// A replacement session takes over and the transcript is cleared.
	assert.NotEqual(t, id, ctrl.SessionID())
	assert.NotEmpty(t, ctrl.SessionID())
	assert.Empty(t, renderer.lastTranscript())
}

func TestController_DeleteOtherSessionKeepsActive(t *testing.T) {
	ctrl, _, backend := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.CreateSession(ctx))
	other := ctrl.SessionID()
	require.NoError(t, ctrl.CreateSession(ctx))
	active := ctrl.SessionID()

	require.NoError(t, ctrl.DeleteSession(ctx, other))

	assert.Equal(t, active, ctrl.SessionID())
	backend.mu.Lock()
	_, exists := backend.sessions[other]
	backend.mu.Unlock()
	assert.False(t, exists)
}

func TestController_UploadArtifact(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.UploadArtifact(ctx, "notes.txt", strings.NewReader("hello")))

	entries := renderer.lastTranscript()
	require.Len(t, entries, 3)

	// The pending placeholder is gone; the upload record leads.
	for _, e := range entries {
		assert.False(t, e.Pending)
	}
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.True(t, strings.HasPrefix(entries[0].Content, "📎 Uploaded file: notes.txt\n\n"))
	assert.Contains(t, entries[0].Content, "File content:")

	// The automatic follow-up asks about the uploaded file.
	assert.Equal(t, `I've uploaded a file named "notes.txt". Please analyze its content and provide insights.`, entries[1].Content)
	assert.Equal(t, domain.RoleAssistant, entries[2].Role)
	assert.Equal(t, 1, backend.chatCalls)
}

func TestController_UploadArtifactFailure(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	backend.failUpload = true
	ctx := context.Background()

	err := ctrl.UploadArtifact(ctx, "notes.txt", strings.NewReader("hello"))
	require.Error(t, err)

	// Placeholder removed, nothing recorded, no follow-up sent.
	assert.Empty(t, renderer.lastTranscript())
	assert.Zero(t, backend.chatCalls)

	notifications := renderer.notified()
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0], "disk full")
}

func TestController_StaleReplyIsDiscarded(t *testing.T) {
	ctrl, renderer, backend := newTestController(t)
	ctx := context.Background()

	release := make(chan struct{})
	backend.blockChat = release

	done := make(chan struct{})
	go func() {
		ctrl.SendMessage(ctx, "slow question")
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(renderer.lastTranscript()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Starting a new session invalidates the in-flight reply.
	require.NoError(t, ctrl.CreateSession(ctx))

	close(release)
	<-done

	assert.Empty(t, renderer.lastTranscript())
	assert.Zero(t, ctrl.transcript.Len())

	// The controller accepts input again after the discarded reply.
	backend.mu.Lock()
	backend.blockChat = nil
	backend.mu.Unlock()
	ctrl.SendMessage(ctx, "next question")
	require.Len(t, renderer.lastTranscript(), 2)
}

func TestController_ExportTranscript(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.CreateSession(ctx))

	dir := t.TempDir()
	path, err := ctrl.ExportTranscript(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "chat-export-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Chat Session: "+ctrl.SessionID())
}

func TestController_ExportWithoutSession(t *testing.T) {
	ctrl, renderer, _ := newTestController(t)

	_, err := ctrl.ExportTranscript(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, renderer.notified()[0], "No active session")
}
