// Package openai implements provider.Client against any OpenAI-compatible
// chat-completions endpoint: OpenAI itself, OpenRouter, Ollama's
// compatibility layer, or a rewriting proxy in front of one of them.
//
// Model aliases let run configurations use stable names while the backend
// serves something else ("deepseek-v3" -> "deepseek/deepseek-chat"); see
// provider.Config.ModelAliases.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/quorum/provider"
	"github.com/randalmurphal/quorum/tokens"
)

const completionsPath = "/v1/chat/completions"

// Client is an HTTP provider.Client. Safe for concurrent use.
type Client struct {
	cfg    provider.Config
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the backend endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.cfg.BaseURL = url }
}

// WithAPIKey sets the bearer key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.cfg.APIKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.Timeout = d }
}

// WithModelAlias maps a configured model name to the identifier the backend
// actually serves.
func WithModelAlias(model, actual string) Option {
	return func(c *Client) { c.cfg = c.cfg.WithAlias(model, actual) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client with defaults plus the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		cfg:    provider.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c
}

// NewClientWithConfig creates a client from a provider.Config.
func NewClientWithConfig(cfg provider.Config) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
}

// Complete implements provider.Client.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model := c.cfg.ResolveModel(req.Model)

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, provider.NewError("openai", "complete", err, false)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewError("openai", "complete", err, false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	c.logger.Debug("completion request",
		"model", model,
		"requested_model", req.Model,
		"max_tokens", req.MaxTokens)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, provider.NewError("openai", "complete", err, true)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.statusError(httpResp)
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, provider.NewError("openai", "complete", fmt.Errorf("decode response: %w", err), false)
	}
	if len(resp.Choices) == 0 {
		return nil, provider.NewError("openai", "complete", provider.ErrEmptyResponse, false)
	}

	content := resp.Choices[0].Message.Content
	used := resp.Usage.TotalTokens
	if used == 0 {
		used = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	}
	if used == 0 {
		// Backend reported no usage; estimate from text.
		used = tokens.Estimate(req.SystemPrompt) + tokens.Estimate(req.Prompt) + tokens.Estimate(content)
		c.logger.Debug("no usage reported, estimated", "model", model, "tokens", used)
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}

	return &provider.Response{
		Content:    content,
		TokensUsed: used,
		Model:      respModel,
		Duration:   time.Since(start),
	}, nil
}

// statusError maps a non-200 upstream status onto the provider error
// taxonomy. 429 and 5xx are retryable.
func (c *Client) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	c.logger.Warn("upstream error",
		"status", resp.StatusCode,
		"body", string(snippet))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return provider.NewError("openai", "complete",
			fmt.Errorf("%w: %s", provider.ErrRateLimited, strings.TrimSpace(string(snippet))), true)
	case resp.StatusCode >= 500:
		return provider.NewError("openai", "complete",
			fmt.Errorf("%w: status %d: %s", provider.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet))), true)
	default:
		return provider.NewError("openai", "complete",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), false)
	}
}
