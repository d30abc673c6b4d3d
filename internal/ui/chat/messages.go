// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/session"
)

// =============================================================================
// MESSAGES
// =============================================================================

// turnBeganMsg - the controller recorded the user message and opened
// the assistant turn.
type turnBeganMsg struct {
	UserText string
}

// fragmentMsg - one fragment of streamed assistant output.
type fragmentMsg struct {
	Content string
}

// turnFinishedMsg - the stream exhausted naturally.
type turnFinishedMsg struct {
	Stats *ollama.StreamStats
}

// turnInterruptedMsg - the user cancelled mid-stream; the view rewrites
// the trailing turn with the interruption marker.
type turnInterruptedMsg struct{}

// turnFailedMsg - the transport failed; partial output stays on screen.
type turnFailedMsg struct {
	Err error
}

// turnDoneMsg - the controller returned; carries the terminal state.
type turnDoneMsg struct {
	State session.TurnState
	Err   error
}

// flushTickMsg drives the batched viewport redraw while streaming.
type flushTickMsg struct{}

// farewellTickMsg ends the farewell screen.
type farewellTickMsg struct{}

// =============================================================================
// CONTROLLER BRIDGE
// =============================================================================

// programSender is the part of *tea.Program the bridge needs.
type programSender interface {
	Send(tea.Msg)
}

// programView adapts the turn controller's view callbacks into program
// messages. The model owns the transcript; this type never touches it,
// so all transcript mutation stays on the update goroutine.
type programView struct {
	p programSender
}

func (v *programView) BeginTurn(userText string) { v.p.Send(turnBeganMsg{UserText: userText}) }
func (v *programView) AppendFragment(s string)   { v.p.Send(fragmentMsg{Content: s}) }
func (v *programView) FinishTurn(stats *ollama.StreamStats) {
	v.p.Send(turnFinishedMsg{Stats: stats})
}
func (v *programView) MarkInterrupted() { v.p.Send(turnInterruptedMsg{}) }
func (v *programView) FailTurn(err error) {
	v.p.Send(turnFailedMsg{Err: err})
}

// Redraw is a no-op: bubbletea repaints on every message, and a paint
// failure there never propagates back into the turn.
func (v *programView) Redraw() error { return nil }
func (v *programView) Clear()        {}
