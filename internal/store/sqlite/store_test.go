package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Chat", session.Title)

	require.NoError(t, store.Append(ctx, session.ID, domain.NewMessage(domain.RoleUser, "Explain channels")))
	require.NoError(t, store.Append(ctx, session.ID, domain.NewMessage(domain.RoleAssistant, "Channels connect goroutines.")))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Explain channels", got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "Channels connect goroutines.", got.Messages[1].Content)
	assert.False(t, got.Messages[0].Timestamp.IsZero())
}

func TestStore_TitleFollowsFirstUserMessage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, session.ID, domain.NewMessage(domain.RoleUser, "First question")))
	require.NoError(t, store.Append(ctx, session.ID, domain.NewMessage(domain.RoleUser, "Second question")))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "First question", got.Title)
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.Append(ctx, "missing", domain.NewMessage(domain.RoleUser, "hi"))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "missing"), domain.ErrSessionNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, second.ID, domain.NewMessage(domain.RoleUser, "hello")))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].MessageCount)
	assert.Equal(t, first.ID, summaries[1].ID)
	assert.Equal(t, 0, summaries[1].MessageCount)
}

func TestStore_DeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, session.ID, domain.NewMessage(domain.RoleUser, "hi")))

	require.NoError(t, store.Delete(ctx, session.ID))

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count))
	assert.Zero(t, count)
}
