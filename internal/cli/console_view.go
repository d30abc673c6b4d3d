// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jeranaias/streamchat/internal/model"
	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/ui/styles"
)

// =============================================================================
// CONSOLE VIEW
// =============================================================================

// consoleView renders a turn to a line-oriented terminal. Fragments are
// written strictly in arrival order, so the printed reply grows only at
// its end; flushes are rate-limited because very fast models otherwise
// spend more time in write syscalls than the terminal can paint.
type consoleView struct {
	out        io.Writer
	transcript *model.Transcript
	showStats  bool

	limiter *rate.Limiter
	pending strings.Builder
}

func newConsoleView(out io.Writer, transcript *model.Transcript, showStats bool) *consoleView {
	return &consoleView{
		out:        out,
		transcript: transcript,
		showStats:  showStats,
		// ~30 flushes a second, with a small burst for the first tokens.
		limiter: rate.NewLimiter(rate.Limit(30), 2),
	}
}

func (v *consoleView) BeginTurn(userText string) {
	v.transcript.AddUserTurn(userText)
	v.transcript.AddAssistantTurn()
	fmt.Fprint(v.out, styles.AssistantLabel.Render("Assistant:")+" ")
}

func (v *consoleView) AppendFragment(content string) {
	v.transcript.AppendToLast(content)
	v.pending.WriteString(content)
}

func (v *consoleView) Redraw() error {
	if v.pending.Len() == 0 {
		return nil
	}
	if !v.limiter.Allow() {
		return nil // batched into a later flush
	}
	return v.flush()
}

func (v *consoleView) FinishTurn(stats *ollama.StreamStats) {
	v.transcript.FinalizeLast(stats)
	_ = v.flush()
	fmt.Fprintln(v.out)
	if v.showStats && stats != nil && stats.EvalCount > 0 {
		fmt.Fprintln(v.out, styles.StatsText.Render(
			fmt.Sprintf("%d tokens · %.1f tok/s", stats.EvalCount, stats.TokensPerSecond())))
	}
}

func (v *consoleView) MarkInterrupted() {
	v.transcript.InterruptLast()
	_ = v.flush()
	fmt.Fprintln(v.out, "\n"+styles.MutedText.Render("[interrupted]"))
}

func (v *consoleView) FailTurn(err error) {
	v.transcript.FailLast(ollama.FriendlyMessage(err))
	_ = v.flush()
	fmt.Fprintln(v.out)
}

func (v *consoleView) Clear() {
	v.transcript.Clear()
}

func (v *consoleView) flush() error {
	if v.pending.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(v.out, v.pending.String())
	v.pending.Reset()
	return err
}
