// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/streamchat/internal/config"
	"github.com/jeranaias/streamchat/internal/model"
	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/session"
)

// =============================================================================
// STATE
// =============================================================================

// State is the session loop state.
type State int

const (
	// StateReady - waiting for input.
	StateReady State = iota
	// StateStreaming - a turn is in flight.
	StateStreaming
	// StateFarewell - exit requested, goodbye screen showing.
	StateFarewell
)

// Layout constants. The header is three rows (border + title line), the
// input area three, and the status bar one.
const (
	headerHeight   = 3
	inputHeight    = 3
	statusHeight   = 1
	minViewportRow = 3
)

// programRef shares the running program with model copies so commands
// started from Update can send messages back.
type programRef struct {
	mu sync.Mutex
	p  programSender
}

func (r *programRef) set(p programSender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the full-screen chat surface.
type Model struct {
	state State

	width  int
	height int
	ready  bool
	frame  int

	transcript *model.Transcript
	transport  *session.ChatTransport
	tokens     *session.TokenSource

	input    textinput.Model
	viewport viewport.Model
	buffer   *fragmentBuffer
	renderer *glamour.TermRenderer

	markdown  bool
	showStats bool
	lastError string

	prog *programRef
}

// New creates the chat surface.
func New(cfg *config.Config, transport *session.ChatTransport) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message (exit to quit, clear to reset)"
	ti.CharLimit = 0
	ti.Focus()

	return Model{
		state:      StateReady,
		transcript: model.NewTranscript(transport.Model()),
		transport:  transport,
		tokens:     session.NewTokenSource(),
		input:      ti,
		viewport:   viewport.New(80, 20),
		buffer:     &fragmentBuffer{},
		markdown:   cfg.UI.Markdown,
		showStats:  cfg.UI.ShowStats,
		prog:       &programRef{},
	}
}

// SetProgram wires the running program in so turn goroutines can send
// messages. Must be called before Run.
func (m *Model) SetProgram(p *tea.Program) {
	m.prog.set(p)
}

// SetModelName switches the service model between turns (config
// reload).
func (m *Model) SetModelName(name string) {
	m.transport.SetModel(name)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case turnBeganMsg:
		m.transcript.AddUserTurn(msg.UserText)
		m.transcript.AddAssistantTurn()
		m.refreshViewport()
		return m, flushTickCmd()

	case fragmentMsg:
		m.buffer.Write(msg.Content)
		return m, nil

	case flushTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		m.flushPending()
		m.frame++
		return m, flushTickCmd()

	case turnFinishedMsg:
		m.flushPending()
		m.transcript.FinalizeLast(msg.Stats)
		m.refreshViewport()
		return m, nil

	case turnInterruptedMsg:
		m.flushPending()
		m.transcript.InterruptLast()
		m.refreshViewport()
		return m, nil

	case turnFailedMsg:
		m.flushPending()
		if msg.Err != nil {
			// The failure lands in the conversation itself, not just
			// the status bar.
			reason := ollama.FriendlyMessage(msg.Err)
			m.transcript.FailLast(reason)
			m.lastError = reason
		} else {
			m.transcript.FinalizeLast(nil)
		}
		m.refreshViewport()
		return m, nil

	case turnDoneMsg:
		m.state = StateReady
		m.input.Focus()
		return m, textinput.Blink

	case farewellTickMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < minViewportRow {
		vpHeight = minViewportRow
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - 6

	// Glamour wraps at render time; rebuild for the new width.
	if m.markdown {
		wrap := m.width - 4
		if wrap < 20 {
			wrap = 20
		}
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		); err == nil {
			m.renderer = r
		}
	}

	m.ready = true
	m.refreshViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == StateFarewell {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		if m.state == StateStreaming {
			// The interrupt consumes this key press; nothing reaches
			// the input line.
			m.tokens.CancelCurrent()
			return m, nil
		}
		return m.beginFarewell()

	case "esc":
		if m.state == StateStreaming {
			m.tokens.CancelCurrent()
			return m, nil
		}
		m.input.Reset()
		return m, nil

	case "ctrl+l":
		m.clearAll()
		return m, nil

	case "enter":
		if m.state != StateReady {
			return m, nil
		}
		return m.submit()

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit classifies the input line and either handles the command or
// starts a streaming turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	cmd, text := session.Classify(m.input.Value())
	switch cmd {
	case session.CommandEmpty:
		return m, nil

	case session.CommandExit:
		return m.beginFarewell()

	case session.CommandClear:
		m.clearAll()
		m.input.Reset()
		return m, nil
	}

	m.input.Reset()
	m.lastError = ""
	m.state = StateStreaming

	token := m.tokens.Issue()
	transport := m.transport
	prog := m.prog
	return m, func() tea.Msg {
		view := &programView{p: prog}
		state, err := session.RunTurn(context.Background(), text, transport, view, token)
		return turnDoneMsg{State: state, Err: err}
	}
}

// clearAll resets the displayed transcript and the service-visible log
// together, and retires any live token.
func (m *Model) clearAll() {
	m.tokens.CancelCurrent()
	m.transcript.Clear()
	m.transport.Clear()
	m.buffer.Flush()
	m.lastError = ""
	m.refreshViewport()
}

func (m Model) beginFarewell() (tea.Model, tea.Cmd) {
	m.state = StateFarewell
	return m, farewellCmd()
}

// flushPending moves batched fragments into the transcript and repaints
// the viewport pinned to the bottom.
func (m *Model) flushPending() {
	if m.buffer.HasPending() {
		m.transcript.AppendToLast(m.buffer.Flush())
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
