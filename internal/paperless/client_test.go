package paperless

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		App:       config.AppConfig{HttpTimeoutSeconds: 5},
		Paperless: config.PaperlessConfig{URL: server.URL + "/", Token: "secret"},
	}
	client, err := NewClient(cfg, utils.NewDiscardLogger())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(&config.Config{}, utils.NewDiscardLogger())
	assert.Error(t, err)
}

func TestGetDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/42/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"title":"Health plan","content":"Funding rose.","page_count":3,"tags":[1,2]}`))
	})

	doc, err := client.GetDocument(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &Document{ID: 42, Title: "Health plan", Content: "Funding rose.", PageCount: 3}, doc)
}

func TestGetDocument_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
	})

	_, err := client.GetDocument(context.Background(), 7)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Not found.")
}
