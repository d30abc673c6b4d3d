// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig controls the HTTP client.
type ClientConfig struct {
	// BaseURL is the service root, without a trailing slash.
	BaseURL string

	// Timeout bounds non-streaming requests (health check, tags).
	Timeout time.Duration

	// DefaultModel is used when a request names no model.
	DefaultModel string
}

// DefaultConfig returns the stock local-service configuration.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      "http://localhost:11434",
		Timeout:      30 * time.Second,
		DefaultModel: "llama3.3",
	}
}

// Client talks to an Ollama-compatible HTTP service.
type Client struct {
	config ClientConfig

	// httpClient serves bounded requests. streamClient has no client
	// timeout; streams are bounded by their context instead.
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client for the given base URL with default
// timeouts. An empty baseURL selects the local service.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client, filling zero-value fields with
// defaults.
func NewClientWithConfig(cfg ClientConfig) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	return &Client{
		config:       cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// DefaultModel returns the model used when none is named.
func (c *Client) DefaultModel() string { return c.config.DefaultModel }

// =============================================================================
// HEALTH AND MODEL DISCOVERY
// =============================================================================

// CheckRunning verifies the service is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return newClientError(ErrorTypeConnection, "failed to build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newClientError(ErrorTypeConnection, "ollama service is not running", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return newClientError(ErrorTypeAPI,
			fmt.Sprintf("unexpected status %d from service", resp.StatusCode), nil)
	}
	return nil
}

// ListModels returns the models installed on the service.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, newClientError(ErrorTypeConnection, "failed to build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newClientError(ErrorTypeConnection, "ollama service is not running", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, newClientError(ErrorTypeAPI, "failed to decode model list", err)
	}
	return tags.Models, nil
}

// =============================================================================
// CHAT
// =============================================================================

// ChatStream opens a streaming chat request and returns the live
// stream. The caller owns the stream and must Close it. The model falls
// back to the client default when empty.
//
// Cancelling ctx aborts the request and any in-flight reads.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message) (*Stream, error) {
	if model == "" {
		model = c.config.DefaultModel
	}

	body, err := json.Marshal(ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, newClientError(ErrorTypeAPI, "failed to encode request", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodPost,
		c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, newClientError(ErrorTypeConnection, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, newClientError(ErrorTypeTimeout, "request cancelled", ctx.Err())
		}
		return nil, newClientError(ErrorTypeConnection, "ollama service is not running", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		return nil, c.statusError(resp)
	}

	return newStream(resp.Body, cancel), nil
}

// Chat sends a non-streaming chat request and returns the complete
// assistant message. Used by one-shot invocations where streaming adds
// nothing.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (Message, error) {
	if model == "" {
		model = c.config.DefaultModel
	}

	body, err := json.Marshal(ChatRequest{Model: model, Messages: messages, Stream: false})
	if err != nil {
		return Message{}, newClientError(ErrorTypeAPI, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Message{}, newClientError(ErrorTypeConnection, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Message{}, newClientError(ErrorTypeTimeout, "request cancelled", ctx.Err())
		}
		return Message{}, newClientError(ErrorTypeConnection, "ollama service is not running", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Message{}, c.statusError(resp)
	}

	var line chatStreamLine
	if err := json.NewDecoder(resp.Body).Decode(&line); err != nil {
		return Message{}, newClientError(ErrorTypeAPI, "failed to decode response", err)
	}
	return line.Message, nil
}

// statusError converts a non-2xx response into a classified error,
// consuming the body for the service's message.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr errorBody
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	if resp.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(msg), "not found") {
		return newClientError(ErrorTypeModelNotFound,
			fmt.Sprintf("model not found: %s", msg), ErrModelNotFound)
	}
	return newClientError(ErrorTypeAPI,
		fmt.Sprintf("service error (status %d): %s", resp.StatusCode, msg), nil)
}
