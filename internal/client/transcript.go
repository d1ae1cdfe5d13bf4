package client

import (
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/google/uuid"
)

// Entry is a single transcript line. Pending entries are placeholders
// (upload progress) that get removed by ID once the operation resolves.
type Entry struct {
	ID        string
	Role      domain.MessageRole
	Content   string
	Timestamp time.Time
	Pending   bool
}

// Transcript holds the ordered conversation view for the active session.
type Transcript struct {
	entries []Entry
}

// Append adds a finished message and returns its entry ID.
func (t *Transcript) Append(role domain.MessageRole, content string) string {
	return t.add(role, content, false)
}

// AppendPending adds a placeholder entry and returns its ID for later removal.
func (t *Transcript) AppendPending(role domain.MessageRole, content string) string {
	return t.add(role, content, true)
}

func (t *Transcript) add(role domain.MessageRole, content string, pending bool) string {
	e := Entry{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Pending:   pending,
	}
	t.entries = append(t.entries, e)
	return e.ID
}

// RemoveByID deletes the entry with the given ID. Unknown IDs are a no-op,
// which makes placeholder cleanup safe to run unconditionally.
func (t *Transcript) RemoveByID(id string) {
	for i, e := range t.entries {
		if e.ID == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Replace swaps the whole transcript for a stored session's messages.
func (t *Transcript) Replace(messages []domain.Message) {
	t.entries = make([]Entry, 0, len(messages))
	for _, m := range messages {
		t.entries = append(t.entries, Entry{
			ID:        uuid.New().String(),
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.entries = nil
}

// Entries returns a copy of the current entries for rendering.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Context returns the last n non-pending entries as wire messages. This is
// the conversation window sent alongside an outgoing message, so it is
// captured before the new message is appended.
func (t *Transcript) Context(n int) []HistoryMessage {
	var msgs []HistoryMessage
	for _, e := range t.entries {
		if e.Pending {
			continue
		}
		msgs = append(msgs, HistoryMessage{
			Role:    string(e.Role),
			Content: e.Content,
		})
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}

// Len reports the number of entries, pending included.
func (t *Transcript) Len() int {
	return len(t.entries)
}
