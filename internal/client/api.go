package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
)

// HistoryMessage is one conversation-window message on the chat request.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the server's answer to a completion request. Success false
// carries a canned response plus the underlying error text.
type ChatReply struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// UploadReply is the server's answer to a file upload.
type UploadReply struct {
	Success        bool   `json:"success"`
	Filename       string `json:"filename"`
	FileID         string `json:"file_id,omitempty"`
	ContentPreview string `json:"content_preview,omitempty"`
	Error          string `json:"error,omitempty"`
}

// API is a thin REST client for the chat backend.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates an API client for the given base URL, e.g.
// "http://localhost:8000".
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Chat sends a message with its conversation window and returns the reply.
func (a *API) Chat(ctx context.Context, sessionID, message string, history []HistoryMessage) (*ChatReply, error) {
	body := map[string]any{
		"message":              message,
		"conversation_history": history,
	}
	if sessionID != "" {
		body["session_id"] = sessionID
	}

	var reply ChatReply
	if err := a.postJSON(ctx, "/api/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// CreateSession asks the server for a fresh session and returns its ID.
func (a *API) CreateSession(ctx context.Context) (string, error) {
	var reply struct {
		Success   bool   `json:"success"`
		SessionID string `json:"session_id"`
	}
	if err := a.postJSON(ctx, "/api/sessions", nil, &reply); err != nil {
		return "", err
	}
	if !reply.Success {
		return "", fmt.Errorf("session create refused by server")
	}
	return reply.SessionID, nil
}

// ListSessions fetches the session directory, newest first.
func (a *API) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var reply struct {
		Sessions []struct {
			SessionID    string    `json:"session_id"`
			Title        string    `json:"title"`
			MessageCount int       `json:"message_count"`
			CreatedAt    time.Time `json:"created_at"`
		} `json:"sessions"`
	}
	if err := a.getJSON(ctx, "/api/sessions", &reply); err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(reply.Sessions))
	for _, s := range reply.Sessions {
		out = append(out, SessionInfo{
			ID:           s.SessionID,
			Title:        s.Title,
			MessageCount: s.MessageCount,
			CreatedAt:    s.CreatedAt,
		})
	}
	return out, nil
}

// GetSession fetches a session's full message history.
func (a *API) GetSession(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var reply struct {
		Success     bool `json:"success"`
		SessionData struct {
			Messages []domain.Message `json:"messages"`
		} `json:"session_data"`
	}
	if err := a.getJSON(ctx, "/api/sessions/"+sessionID, &reply); err != nil {
		return nil, err
	}
	return reply.SessionData.Messages, nil
}

// DeleteSession removes a session on the server.
func (a *API) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.baseURL+"/api/sessions/"+sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.errorFrom(resp)
	}
	return nil
}

// Export downloads a session's plaintext transcript.
func (a *API) Export(ctx context.Context, sessionID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/sessions/"+sessionID+"/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.errorFrom(resp)
	}
	return io.ReadAll(resp.Body)
}

// Upload posts a file as multipart form data, optionally attaching it to a
// session so the server records it in the history.
func (a *API) Upload(ctx context.Context, sessionID, filename string, content io.Reader) (*UploadReply, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.errorFrom(resp)
	}

	var reply UploadReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (a *API) postJSON(ctx context.Context, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.errorFrom(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.errorFrom(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) errorFrom(resp *http.Response) error {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, detail.Detail)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
