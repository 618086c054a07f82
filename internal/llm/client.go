package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
	"github.com/wgomg/precis/internal/utils/httputils"
)

// tokens kept free for the instructions around the document
const promptOverheadTokens = 200

var ErrEmptyResponse = errors.New("empty response from LLM")

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *utils.Logger
	cfg        *config.LlmConfig
}

func NewClient(cfg *config.Config, logger *utils.Logger) (*Client, error) {
	if !cfg.Llm.Enabled() {
		return nil, fmt.Errorf("LLM_URL and LLM_TOKEN are required")
	}

	limit := rate.Inf
	if cfg.Llm.RequestsPerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Llm.RequestsPerMin))
	}

	return &Client{
		baseURL: cfg.Llm.URL,
		token:   cfg.Llm.Token,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.App.HttpTimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		cfg:     &cfg.Llm,
	}, nil
}

// Ask answers a free-form question about document. The document is cut to
// fit the configured context window.
func (c *Client) Ask(ctx context.Context, document, question string) (string, error) {
	budget := c.cfg.ContextTokens - c.cfg.MaxTokens - utils.EstimateTokens(question) - promptOverheadTokens
	excerpt := utils.TruncateTokens(document, max(budget, 1))
	if len(excerpt) < len(document) {
		c.logger.Debug(utils.RequestID(ctx), "Document truncated to %d of %d estimated tokens",
			utils.EstimateTokens(excerpt), utils.EstimateTokens(document))
	}

	prompt := fmt.Sprintf(
		"Answer the question below using only the document provided. If the document does not contain the answer, say so. Answer in the language of the question, in plain text without formatting.\n\nQuestion: %s\n\nDocument: %s",
		question,
		excerpt,
	)

	return c.complete(ctx, "You are a helpful assistant that answers questions about documents accurately and concisely", prompt)
}

// Translate renders text in the target language, keeping one sentence per
// line.
func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the text below into %s. Keep the line breaks and the order of sentences. Return ONLY the translation without explanations, notes or code blocks.\n\nText: %s",
		language,
		text,
	)

	translation, err := c.complete(ctx, "You are a professional translator of policy and healthcare documents", prompt)
	if err != nil {
		return "", err
	}
	return utils.CleanCodeBlock(translation), nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	reqID := utils.RequestID(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	reqBody := ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Model:            c.cfg.Model,
		Thinking:         &ThinkingConfig{Type: "disabled"},
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		MaxTokens:        c.cfg.MaxTokens,
		PresencePenalty:  c.cfg.PresencePenalty,
		ResponseFormat:   ResponseFormat{Type: "text"},
		Stream:           false,
		Temperature:      c.cfg.Temperature,
		TopP:             1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	if c.logger.RawBodyLog {
		c.logger.Debug(reqID, "Sending LLM request: %s", utils.Truncate(string(jsonBody), 2000))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	c.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if _, err := httputils.LogResponseBody(resp, c.logger, reqID); err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleAPIError(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug(reqID, "LLM usage - prompt_tokens: %d, completion_tokens: %d, total_tokens: %d",
		chatResp.Usage.PromptTokens,
		chatResp.Usage.CompletionTokens,
		chatResp.Usage.TotalTokens)

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
}

func (c *Client) handleAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}
}
