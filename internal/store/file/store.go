// Package file implements the session store as one JSON document per session.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/google/uuid"
)

// Store persists each session as <dir>/<session_id>.json
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a file-backed session store rooted at dir
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create persists a fresh empty session and returns it
func (s *Store) Create(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &domain.Session{
		ID:        uuid.New().String(),
		Title:     "New Chat",
		CreatedAt: time.Now(),
		Messages:  []domain.Message{},
	}
	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session with its full message list
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// Append adds a message to an existing session and refreshes its title
func (s *Store) Append(ctx context.Context, id string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(id)
	if err != nil {
		return err
	}

	session.Messages = append(session.Messages, msg)
	session.Title = domain.TitleFor(session.Messages)

	return s.save(session)
}

// List returns summaries for all sessions, newest first
func (s *Store) List(ctx context.Context) ([]domain.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	summaries := []domain.SessionSummary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		session, err := s.load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip unreadable session files rather than failing the listing.
			continue
		}
		summaries = append(summaries, session.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a session
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close releases any underlying resources
func (s *Store) Close() error {
	return nil
}

func (s *Store) load(id string) (*domain.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *Store) save(session *domain.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path(session.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
