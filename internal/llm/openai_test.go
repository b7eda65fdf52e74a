package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, reply string, captured *map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gemma3:4b",
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": reply}}},
			"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Complete(t *testing.T) {
	var captured map[string]any
	srv := newChatServer(t, `{"action":"chat","reply":"hi"}`, &captured)

	client, err := NewClient(Config{Provider: ProviderOllama, BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", client.Name())

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Model: "gemma3:4b",
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hello"},
		},
		Temperature: 0.1,
		JSON:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"action":"chat","reply":"hi"}`, resp.Content)
	assert.Equal(t, 12, resp.TokensIn)
	assert.Equal(t, 5, resp.TokensOut)
	assert.Equal(t, "stop", resp.StopReason)

	assert.Equal(t, "gemma3:4b", captured["model"])
	assert.InDelta(t, 0.1, captured["temperature"], 0.0001)
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIClient_NoJSONHint(t *testing.T) {
	var captured map[string]any
	srv := newChatServer(t, "plain", &captured)

	client, err := NewOpenAIClient("key", srv.URL+"/v1", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())

	_, err = client.Complete(context.Background(), &CompletionRequest{Messages: []ChatMessage{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	_, hasFormat := captured["response_format"]
	assert.False(t, hasFormat)
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("key", srv.URL, "ollama")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &CompletionRequest{Messages: []ChatMessage{{Role: RoleUser, Content: "x"}}})
	assert.Error(t, err)
}
