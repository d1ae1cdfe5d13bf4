package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/client/format"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// historyWindow is how many transcript messages accompany an outgoing
	// message as conversation context.
	historyWindow = 10

	// sendFailureText is shown as an assistant message when the request
	// itself fails (network error, server unreachable).
	sendFailureText = "Sorry, I encountered an error. Please try again."

	// uploadFollowUp is the prompt sent automatically after a successful
	// upload so the assistant reacts to the file.
	uploadFollowUp = `I've uploaded a file named "%s". Please analyze its content and provide insights.`
)

// Controller owns all client-side conversation state: the active session,
// its transcript, the session directory, and the in-flight send guard. All
// state transitions happen here; the Renderer is write-only output.
//
// Methods are safe for concurrent use. Network calls run outside the lock,
// and responses that arrive after the transcript was replaced (session
// switched or recreated mid-flight) are discarded via an epoch check.
type Controller struct {
	api      *API
	renderer Renderer

	// followUpDelay separates the upload record from its automatic
	// follow-up prompt. Tests set it to zero.
	followUpDelay time.Duration

	mu         sync.Mutex
	transcript Transcript
	directory  Directory
	sessionID  string
	inFlight   bool
	epoch      int
}

// NewController wires a controller to its backend and renderer.
func NewController(api *API, renderer Renderer) *Controller {
	return &Controller{
		api:           api,
		renderer:      renderer,
		followUpDelay: 500 * time.Millisecond,
	}
}

// SessionID returns the active session's ID, empty before the first exchange.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Sessions returns the cached session directory, newest first.
func (c *Controller) Sessions() []SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.Sessions()
}

// SendMessage runs one request/response exchange. Empty input and sends
// issued while a previous send is still in flight are ignored.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true

	// The context window is captured before the outgoing message is
	// appended; the server appends the message itself.
	history := c.transcript.Context(historyWindow)
	c.transcript.Append(domain.RoleUser, text)
	sessionID := c.sessionID
	epoch := c.epoch
	entries := c.transcript.Entries()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)

	reply, err := c.api.Chat(ctx, sessionID, text, history)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		// The transcript was replaced while this request was in
		// flight; the reply belongs to a conversation no longer shown.
		c.mu.Unlock()
		c.renderer.FocusInput()
		return
	}

	if err != nil {
		c.transcript.Append(domain.RoleAssistant, sendFailureText)
		entries = c.transcript.Entries()
		c.mu.Unlock()

		log.Warn().Err(err).Msg("chat request failed")
		c.renderer.RenderTranscript(entries)
		c.renderer.Notify("Failed to send message: " + err.Error())
		c.renderer.FocusInput()
		return
	}

	// The server reports provider failure as a 200 with success false and
	// the error text alongside a canned reply. Treat it like a transport
	// failure: fixed error entry, notification, no session bookkeeping.
	if !reply.Success {
		c.transcript.Append(domain.RoleAssistant, sendFailureText)
		entries = c.transcript.Entries()
		c.mu.Unlock()

		log.Warn().Str("error", reply.Error).Msg("chat request rejected")
		c.renderer.RenderTranscript(entries)
		c.renderer.Notify("Failed to send message: " + reply.Error)
		c.renderer.FocusInput()
		return
	}

	if reply.SessionID != "" {
		c.sessionID = reply.SessionID
	}
	c.transcript.Append(domain.RoleAssistant, reply.Response)
	entries = c.transcript.Entries()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)
	c.renderer.FocusInput()
	c.refreshDirectory(ctx)
}

// CreateSession starts a fresh conversation, clearing the transcript.
func (c *Controller) CreateSession(ctx context.Context) error {
	id, err := c.api.CreateSession(ctx)
	if err != nil {
		c.renderer.Notify("Failed to create session: " + err.Error())
		return err
	}

	c.mu.Lock()
	c.epoch++
	c.sessionID = id
	c.transcript.Clear()
	entries := c.transcript.Entries()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)
	c.renderer.FocusInput()
	c.refreshDirectory(ctx)
	return nil
}

// SwitchSession loads another session's history into the transcript.
// Switching to the already-active session is a no-op.
func (c *Controller) SwitchSession(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if sessionID == c.sessionID {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	messages, err := c.api.GetSession(ctx, sessionID)
	if err != nil {
		c.renderer.Notify("Failed to load session: " + err.Error())
		return err
	}

	c.mu.Lock()
	c.epoch++
	c.sessionID = sessionID
	c.transcript.Replace(messages)
	entries := c.transcript.Entries()
	sessions := c.directory.Sessions()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)
	c.renderer.RenderDirectory(sessions, sessionID)
	c.renderer.FocusInput()
	return nil
}

// DeleteSession removes a session after user confirmation. Deleting the
// active session starts a fresh one in its place.
func (c *Controller) DeleteSession(ctx context.Context, sessionID string) error {
	if !c.renderer.Confirm("Are you sure you want to delete this chat session?") {
		return nil
	}

	if err := c.api.DeleteSession(ctx, sessionID); err != nil {
		c.renderer.Notify("Failed to delete session: " + err.Error())
		return err
	}

	c.mu.Lock()
	wasActive := sessionID == c.sessionID
	c.mu.Unlock()

	if wasActive {
		if err := c.CreateSession(ctx); err != nil {
			return err
		}
		return nil
	}
	c.refreshDirectory(ctx)
	return nil
}

// UploadArtifact sends a file to the server, records it in the transcript,
// and after a short delay asks the assistant to analyze it. While the upload
// runs a pending placeholder entry is shown; it is removed by ID so a
// concurrent transcript change cannot strand or misremove it.
func (c *Controller) UploadArtifact(ctx context.Context, filename string, content io.Reader) error {
	c.mu.Lock()
	placeholderID := c.transcript.AppendPending(domain.RoleUser, "Uploading file...")
	sessionID := c.sessionID
	entries := c.transcript.Entries()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)

	reply, err := c.api.Upload(ctx, sessionID, filename, content)

	c.mu.Lock()
	c.transcript.RemoveByID(placeholderID)
	if err == nil && reply.Success {
		uploadMsg := fmt.Sprintf("%s Uploaded file: %s\n\n%s",
			format.UploadMarker, reply.Filename, reply.ContentPreview)
		c.transcript.Append(domain.RoleUser, uploadMsg)
	}
	entries = c.transcript.Entries()
	c.mu.Unlock()

	c.renderer.RenderTranscript(entries)

	if err != nil {
		c.renderer.Notify("Failed to upload file: " + err.Error())
		return err
	}
	if !reply.Success {
		c.renderer.Notify("Upload failed: " + reply.Error)
		return fmt.Errorf("upload rejected: %s", reply.Error)
	}

	if c.followUpDelay > 0 {
		time.Sleep(c.followUpDelay)
	}
	c.SendMessage(ctx, fmt.Sprintf(uploadFollowUp, reply.Filename))
	return nil
}

// ExportTranscript downloads the active session as plaintext and writes it
// to a dated file in dir, returning the path.
func (c *Controller) ExportTranscript(ctx context.Context, dir string) (string, error) {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	if sessionID == "" {
		c.renderer.Notify("No active session to export")
		return "", fmt.Errorf("no active session")
	}

	data, err := c.api.Export(ctx, sessionID)
	if err != nil {
		c.renderer.Notify("Failed to export session: " + err.Error())
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("chat-export-%s.txt", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.renderer.Notify("Failed to write export: " + err.Error())
		return "", err
	}
	return path, nil
}

// RefreshDirectory re-fetches the session list and redraws it.
func (c *Controller) RefreshDirectory(ctx context.Context) {
	c.refreshDirectory(ctx)
}

func (c *Controller) refreshDirectory(ctx context.Context) {
	sessions, err := c.api.ListSessions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session list refresh failed")
		return
	}

	c.mu.Lock()
	c.directory.Set(sessions)
	active := c.sessionID
	c.mu.Unlock()

	c.renderer.RenderDirectory(sessions, active)
}
