// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/streamchat/internal/ollama"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the displayed conversation: everything the user has
// seen, including interrupted replies the service-visible history
// deliberately omits. Not safe for concurrent use; each surface owns
// its transcript on a single goroutine.
type Transcript struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Model     string

	turns []*Turn
}

// NewTranscript creates an empty transcript for the given model.
func NewTranscript(modelName string) *Transcript {
	now := time.Now()
	return &Transcript{
		ID:        uuid.NewString(),
		Title:     "New conversation",
		CreatedAt: now,
		UpdatedAt: now,
		Model:     modelName,
	}
}

// Turns returns the underlying turn list. Callers must not mutate it.
func (c *Transcript) Turns() []*Turn {
	return c.turns
}

// Len returns the number of turns.
func (c *Transcript) Len() int {
	return len(c.turns)
}

// IsEmpty reports whether the transcript has no turns.
func (c *Transcript) IsEmpty() bool {
	return len(c.turns) == 0
}

// Last returns the most recent turn, or nil when empty.
func (c *Transcript) Last() *Turn {
	if len(c.turns) == 0 {
		return nil
	}
	return c.turns[len(c.turns)-1]
}

// AddUserTurn appends a completed user turn. The first user turn also
// titles the transcript.
func (c *Transcript) AddUserTurn(content string) *Turn {
	t := NewUserTurn(content)
	c.turns = append(c.turns, t)
	c.UpdatedAt = time.Now()
	if c.Title == "New conversation" {
		c.Title = t.Preview(50)
	}
	return t
}

// AddAssistantTurn appends an empty streaming assistant turn.
func (c *Transcript) AddAssistantTurn() *Turn {
	t := NewAssistantTurn()
	c.turns = append(c.turns, t)
	c.UpdatedAt = time.Now()
	return t
}

// AppendToLast adds a fragment to the trailing streaming turn.
func (c *Transcript) AppendToLast(fragment string) {
	if last := c.Last(); last != nil {
		last.Append(fragment)
		c.UpdatedAt = time.Now()
	}
}

// FinalizeLast freezes the trailing streaming turn.
func (c *Transcript) FinalizeLast(stats *ollama.StreamStats) {
	if last := c.Last(); last != nil {
		last.Finalize(stats)
		c.UpdatedAt = time.Now()
	}
}

// InterruptLast rewrites the trailing streaming turn with the
// interruption marker.
func (c *Transcript) InterruptLast() {
	if last := c.Last(); last != nil {
		last.Interrupt()
		c.UpdatedAt = time.Now()
	}
}

// FailLast ends the trailing streaming turn with an inline error
// marker.
func (c *Transcript) FailLast(reason string) {
	if last := c.Last(); last != nil {
		last.Fail(reason)
		c.UpdatedAt = time.Now()
	}
}

// Clear removes every turn and resets the title. The transcript keeps
// its identity; clearing is a fresh page, not a new notebook.
func (c *Transcript) Clear() {
	c.turns = nil
	c.Title = "New conversation"
	c.UpdatedAt = time.Now()
}
