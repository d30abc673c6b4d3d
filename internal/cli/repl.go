// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/jeranaias/streamchat/internal/config"
	"github.com/jeranaias/streamchat/internal/model"
	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/session"
	"github.com/jeranaias/streamchat/internal/ui/styles"
)

// =============================================================================
// PLAIN REPL SURFACE
// =============================================================================

// REPL is the line-oriented chat surface used when the terminal cannot
// host the full-screen UI, or when the user asks for it.
type REPL struct {
	cfg        *config.Config
	transport  *session.ChatTransport
	tokens     *session.TokenSource
	transcript *model.Transcript
	out        io.Writer

	line        *liner.State
	historyFile string
}

// NewREPL creates the plain surface.
func NewREPL(cfg *config.Config, transport *session.ChatTransport) *REPL {
	return &REPL{
		cfg:        cfg,
		transport:  transport,
		tokens:     session.NewTokenSource(),
		transcript: model.NewTranscript(transport.Model()),
		out:        os.Stdout,
	}
}

// Run drives the session loop until an exit command or EOF.
func (r *REPL) Run(ctx context.Context) error {
	r.line = liner.NewLiner()
	r.line.SetCtrlCAborts(true)
	defer r.line.Close()

	r.loadPromptHistory()
	defer r.savePromptHistory()

	fmt.Fprintf(r.out, "%s  %s\n",
		styles.RenderRainbow("streamchat", 0),
		styles.MutedText.Render("model "+r.transport.Model()+" · exit to quit"))

	for {
		input, err := r.line.Prompt("> ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			// Ctrl-C at the prompt reads as empty input: re-prompt.
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.out)
			r.farewell()
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		cmd, text := session.Classify(input)
		switch cmd {
		case session.CommandEmpty:
			continue

		case session.CommandExit:
			r.farewell()
			return nil

		case session.CommandClear:
			r.clearAll()
			continue

		case session.CommandMessage:
			r.line.AppendHistory(text)
			r.runTurn(ctx, text)
		}
	}
}

// runTurn streams one reply to the console. Ctrl-C during the stream
// cancels the turn's token; the signal handler is removed before the
// next prompt so a later Ctrl-C aborts the prompt instead.
func (r *REPL) runTurn(ctx context.Context, text string) {
	token := r.tokens.Issue()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		select {
		case <-sigC:
			token.Cancel()
		case <-stop:
		}
	}()
	defer func() {
		signal.Stop(sigC)
		close(stop)
	}()

	view := newConsoleView(r.out, r.transcript, r.cfg.UI.ShowStats)
	state, err := session.RunTurn(ctx, text, r.transport, view, token)
	if state == session.TurnFailed && err != nil {
		fmt.Fprintln(r.out, styles.RenderError(ollama.FriendlyMessage(err)))
	}
}

// clearAll wipes the screen, the displayed transcript, and the
// service-visible log, and retires any live token.
func (r *REPL) clearAll() {
	r.tokens.CancelCurrent()
	r.transcript.Clear()
	r.transport.Clear()
	termenv.ClearScreen()
}

func (r *REPL) farewell() {
	fmt.Fprintln(r.out, styles.RenderRainbow("bye", 2))
	time.Sleep(700 * time.Millisecond)
}

// =============================================================================
// PROMPT HISTORY
// =============================================================================

func (r *REPL) loadPromptHistory() {
	r.historyFile = filepath.Join(config.Dir(), "repl_history")
	if f, err := os.Open(r.historyFile); err == nil {
		defer f.Close()
		r.line.ReadHistory(f)
	}
}

func (r *REPL) savePromptHistory() {
	if r.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}
