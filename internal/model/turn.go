// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/streamchat/internal/ollama"
)

// InterruptedMarker is appended to a reply the user cut off. It is a
// display artifact only; the service never sees it.
const InterruptedMarker = "\n[interrupted]"

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns the label shown in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN
// =============================================================================

// Turn is one entry in the displayed transcript. Assistant turns are
// built incrementally while streaming; content accumulates in a
// builder until the turn is finalized or interrupted.
type Turn struct {
	ID        string
	Role      Role
	Timestamp time.Time

	// Content is authoritative once Streaming is false.
	Content     string
	Streaming   bool
	Interrupted bool
	Failed      bool

	// Stats is set on naturally-completed assistant turns.
	Stats *ollama.StreamStats

	partial strings.Builder
}

// NewUserTurn creates a completed user turn.
func NewUserTurn(content string) *Turn {
	return &Turn{
		ID:        "turn_" + uuid.NewString(),
		Role:      RoleUser,
		Timestamp: time.Now(),
		Content:   content,
	}
}

// NewAssistantTurn creates an empty assistant turn in streaming state.
func NewAssistantTurn() *Turn {
	return &Turn{
		ID:        "turn_" + uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Streaming: true,
	}
}

// Append adds a fragment to a streaming turn. No-op once finalized.
func (t *Turn) Append(fragment string) {
	if !t.Streaming {
		return
	}
	t.partial.WriteString(fragment)
}

// Text returns the turn's current display text, valid in any state.
func (t *Turn) Text() string {
	if t.Streaming {
		return t.partial.String()
	}
	return t.Content
}

// Finalize ends streaming and freezes the accumulated text.
func (t *Turn) Finalize(stats *ollama.StreamStats) {
	if !t.Streaming {
		return
	}
	t.Content = t.partial.String()
	t.Streaming = false
	t.Stats = stats
}

// Interrupt ends streaming, freezing the partial text with the
// interruption marker appended. This is the only rewrite a turn ever
// undergoes; until this point its text grows strictly by suffix.
func (t *Turn) Interrupt() {
	if !t.Streaming {
		return
	}
	t.Content = t.partial.String() + InterruptedMarker
	t.Streaming = false
	t.Interrupted = true
}

// Fail ends streaming with an inline error marker, in place of the
// reply when nothing arrived or appended to the partial text when
// something did. The failure stays visible in the conversation rather
// than only in transient status chrome.
func (t *Turn) Fail(reason string) {
	if !t.Streaming {
		return
	}
	marker := "[error] " + reason
	if t.partial.Len() > 0 {
		marker = "\n" + marker
	}
	t.Content = t.partial.String() + marker
	t.Streaming = false
	t.Failed = true
}

// Preview returns the first n runes of the text, with an ellipsis when
// truncated. Used for titles and history listings.
func (t *Turn) Preview(n int) string {
	text := strings.ReplaceAll(t.Text(), "\n", " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
