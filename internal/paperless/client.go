package paperless

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
	"github.com/wgomg/precis/internal/utils/httputils"
)

// Client reads stored documents from a Paperless-ngx instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *utils.Logger
}

func NewClient(cfg *config.Config, logger *utils.Logger) (*Client, error) {
	if !cfg.Paperless.Enabled() {
		return nil, fmt.Errorf("PAPERLESS_URL and PAPERLESS_TOKEN are required")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Paperless.URL, "/"),
		token:   cfg.Paperless.Token,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.App.HttpTimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// GetDocument fetches a document together with its OCR'd content.
func (c *Client) GetDocument(ctx context.Context, documentID int) (*Document, error) {
	reqID := utils.RequestID(ctx)
	url := fmt.Sprintf("%s/api/documents/%d/", c.baseURL, documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setAuthHeaders(req)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug(reqID, "Fetching document %d from %s", documentID, c.baseURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if _, err := httputils.LogResponseBody(resp, c.logger, reqID); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp)
	}

	var document Document
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug(reqID, "Fetched document %d (%q, %d pages, %d chars)",
		document.ID, document.Title, document.PageCount, len(document.Content))

	return &document, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Token %s", c.token))
}

func (c *Client) handleAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}
}
