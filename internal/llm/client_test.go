package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

func newTestClient(t *testing.T, contextTokens int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		App: config.AppConfig{HttpTimeoutSeconds: 5},
		Llm: config.LlmConfig{
			URL:           server.URL + "/v1/chat/completions",
			Token:         "secret",
			Model:         "test-model",
			MaxTokens:     100,
			ContextTokens: contextTokens,
		},
	}
	client, err := NewClient(cfg, utils.NewDiscardLogger())
	require.NoError(t, err)
	return client
}

func reply(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(ChatResponse{
		Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
	})
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(&config.Config{}, utils.NewDiscardLogger())
	assert.Error(t, err)
}

func TestAsk(t *testing.T) {
	var got ChatRequest
	client := newTestClient(t, 8000, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, "  Funding rose by 10%.  ")
	})

	answer, err := client.Ask(context.Background(), "The budget grew. Funding rose by 10%.", "How much did funding rise?")
	require.NoError(t, err)

	assert.Equal(t, "Funding rose by 10%.", answer)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "How much did funding rise?")
	assert.Contains(t, got.Messages[1].Content, "The budget grew.")
}

func TestAsk_TruncatesDocument(t *testing.T) {
	var prompt string
	client := newTestClient(t, 400, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[1].Content
		reply(w, "ok")
	})

	document := strings.Repeat("word ", 5000) + "UNREACHABLE"
	_, err := client.Ask(context.Background(), document, "What?")
	require.NoError(t, err)

	assert.NotContains(t, prompt, "UNREACHABLE")
	assert.Less(t, utils.EstimateTokens(prompt), 400)
}

func TestTranslate_StripsCodeBlock(t *testing.T) {
	client := newTestClient(t, 8000, func(w http.ResponseWriter, r *http.Request) {
		reply(w, "```text\nLa financiación aumentó.\n```")
	})

	translation, err := client.Translate(context.Background(), "Funding increased.", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "La financiación aumentó.", translation)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
				assert.Contains(t, apiErr.Body, "quota exceeded")
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices":[]}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, 8000, tt.handler)
			_, err := client.Ask(context.Background(), "Some document.", "Question?")
			tt.check(t, err)
		})
	}
}

func TestComplete_CancelledContext(t *testing.T) {
	client := newTestClient(t, 8000, func(w http.ResponseWriter, r *http.Request) {
		reply(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Translate(ctx, "Text.", "French")
	assert.ErrorIs(t, err, context.Canceled)
}
