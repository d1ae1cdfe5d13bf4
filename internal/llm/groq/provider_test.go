package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Complete(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "the reply"}},
			},
			"usage": map[string]any{"total_tokens": 42},
		})
	}))
	defer server.Close()

	p := NewProvider("test-key", server.URL, "")

	resp, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			{Role: "user", Content: "hi"},
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "the reply", resp.Text)
	assert.Equal(t, "llama-3.1-8b-instant", resp.Model)
	assert.Equal(t, 42, resp.TokensUsed)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.1-8b-instant", gotReq.Model)
	assert.False(t, gotReq.Stream)
	assert.InDelta(t, 0.7, gotReq.Temperature, 1e-9)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestProvider_CompleteErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		p := NewProvider("k", server.URL, "")
		_, err := p.Complete(context.Background(), llm.Request{}, "")
		assert.ErrorContains(t, err, "status 429")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		p := NewProvider("k", server.URL, "")
		_, err := p.Complete(context.Background(), llm.Request{}, "")
		assert.ErrorContains(t, err, "no response")
	})
}

func TestProvider_IsConfigured(t *testing.T) {
	assert.False(t, NewProvider("", "", "").IsConfigured())
	assert.True(t, NewProvider("key", "", "").IsConfigured())
}
