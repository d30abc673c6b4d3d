// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is a single chat message as the service understands it.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", or "system"
	Content string `json:"content"`
}

// NewUserMessage creates a message with the user role.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a message with the assistant role.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a message with the system role.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`

	// Options carries model parameters (temperature, num_ctx, ...).
	// Omitted when nil so the service uses its own defaults.
	Options map[string]any `json:"options,omitempty"`
}

// chatStreamLine is one NDJSON line of a streaming /api/chat response.
type chatStreamLine struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`

	DoneReason string `json:"done_reason,omitempty"`

	// Final-line statistics, only present when Done is true.
	TotalDuration   int64 `json:"total_duration,omitempty"`
	LoadDuration    int64 `json:"load_duration,omitempty"`
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
	EvalDuration    int64 `json:"eval_duration,omitempty"`
}

// errorBody is what the service returns on a non-2xx status.
type errorBody struct {
	Error string `json:"error"`
}

// ModelInfo describes one installed model from GET /api/tags.
type ModelInfo struct {
	Name       string    `json:"name"`
	Model      string    `json:"model"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// tagsResponse is the body of GET /api/tags.
type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// =============================================================================
// STREAM FRAGMENTS
// =============================================================================

// Fragment is one unit of streamed assistant output as delivered to
// stream consumers. A Fragment with Done set carries no content, only
// the end-of-stream statistics.
type Fragment struct {
	Content    string
	Done       bool
	DoneReason string

	// Populated on the Done fragment.
	Stats *StreamStats
}

// StreamStats summarizes a completed stream.
type StreamStats struct {
	TotalDuration   time.Duration
	LoadDuration    time.Duration
	PromptEvalCount int
	EvalCount       int
	EvalDuration    time.Duration
	TimeToFirst     time.Duration
}

// TokensPerSecond reports the generation rate, or 0 when unknown.
func (s *StreamStats) TokensPerSecond() float64 {
	if s == nil || s.EvalDuration <= 0 {
		return 0
	}
	return float64(s.EvalCount) / s.EvalDuration.Seconds()
}
