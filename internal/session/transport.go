// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"io"
	"sync"

	"github.com/jeranaias/streamchat/internal/ollama"
)

// noResponsePlaceholder stands in for an empty non-streaming reply so
// the conversation never shows a blank assistant turn.
const noResponsePlaceholder = "[No response]"

// =============================================================================
// CHAT TRANSPORT
// =============================================================================

// ChatTransport is the Transport implementation backed by the Ollama
// client. It is the single owner of the service-visible message
// history: the user message lands in the history before the request
// goes out, and the assistant reply lands only via Commit.
type ChatTransport struct {
	client *ollama.Client

	mu        sync.Mutex
	model     string
	streaming bool
	history   []ollama.Message
}

// NewChatTransport creates a streaming transport for the given model.
// An empty model defers to the client's default.
func NewChatTransport(client *ollama.Client, model string) *ChatTransport {
	if model == "" {
		model = client.DefaultModel()
	}
	return &ChatTransport{client: client, model: model, streaming: true}
}

// Send records the user message and issues the request. The user
// message stays in the history even when the request fails; the
// service will see it again with the next turn, which matches how a
// conversation reads after a transient failure.
//
// In non-streaming mode the complete reply still comes back as a
// fragment stream: one content fragment carrying the whole text, then
// the done marker. An empty reply is replaced with a placeholder.
func (t *ChatTransport) Send(ctx context.Context, userText string) (FragmentStream, error) {
	t.mu.Lock()
	t.history = append(t.history, ollama.NewUserMessage(userText))
	messages := make([]ollama.Message, len(t.history))
	copy(messages, t.history)
	model := t.model
	streaming := t.streaming
	t.mu.Unlock()

	if streaming {
		return t.client.ChatStream(ctx, model, messages)
	}

	msg, err := t.client.Chat(ctx, model, messages)
	if err != nil {
		return nil, err
	}
	content := msg.Content
	if content == "" {
		content = noResponsePlaceholder
	}
	return &completeStream{content: content}, nil
}

// Commit records a naturally-completed assistant reply.
func (t *ChatTransport) Commit(assistant string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, ollama.NewAssistantMessage(assistant))
}

// History returns a copy of the service-visible message log.
func (t *ChatTransport) History() []ollama.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ollama.Message, len(t.history))
	copy(out, t.history)
	return out
}

// Clear empties the message log.
func (t *ChatTransport) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}

// Model returns the model name used for requests.
func (t *ChatTransport) Model() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model
}

// SetModel switches the model for subsequent turns. The history is
// kept; models share the conversation.
func (t *ChatTransport) SetModel(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if model != "" {
		t.model = model
	}
}

// SetStreaming toggles between streaming and whole-reply requests.
func (t *ChatTransport) SetStreaming(streaming bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streaming = streaming
}

// Streaming reports whether replies arrive fragment by fragment.
func (t *ChatTransport) Streaming() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streaming
}

// =============================================================================
// NON-STREAMING ADAPTER
// =============================================================================

// completeStream adapts an already-complete reply to the fragment
// stream contract: the whole text as one fragment, then the done
// marker.
type completeStream struct {
	content string
	pos     int
}

func (s *completeStream) Next(ctx context.Context) (ollama.Fragment, error) {
	switch s.pos {
	case 0:
		s.pos++
		return ollama.Fragment{Content: s.content}, nil
	case 1:
		s.pos++
		return ollama.Fragment{Done: true}, nil
	default:
		return ollama.Fragment{}, io.EOF
	}
}

func (s *completeStream) Close() error { return nil }
