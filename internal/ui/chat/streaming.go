// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// flushInterval caps streaming redraws at roughly 30fps. Fragments
// arrive far faster than the terminal can usefully repaint; batching
// them keeps the viewport smooth without dropping any text, and the
// flushed text still only ever grows by suffix.
const flushInterval = 33 * time.Millisecond

// fragmentBuffer accumulates stream fragments between flush ticks. It
// is only touched from the update loop, so it needs no locking.
type fragmentBuffer struct {
	pending strings.Builder
	count   int
}

// Write adds a fragment to the pending batch.
func (b *fragmentBuffer) Write(fragment string) {
	b.pending.WriteString(fragment)
	b.count++
}

// Flush returns the batched text and empties the buffer.
func (b *fragmentBuffer) Flush() string {
	out := b.pending.String()
	b.pending.Reset()
	b.count = 0
	return out
}

// HasPending reports whether a flush would emit anything.
func (b *fragmentBuffer) HasPending() bool {
	return b.pending.Len() > 0
}

// flushTickCmd schedules the next batched redraw.
func flushTickCmd() tea.Cmd {
	return tea.Tick(flushInterval, func(time.Time) tea.Msg {
		return flushTickMsg{}
	})
}

// farewellCmd holds the goodbye screen briefly before quitting.
func farewellCmd() tea.Cmd {
	return tea.Tick(900*time.Millisecond, func(time.Time) tea.Msg {
		return farewellTickMsg{}
	})
}
