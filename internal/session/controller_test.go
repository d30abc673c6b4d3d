// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jeranaias/streamchat/internal/model"
	"github.com/jeranaias/streamchat/internal/ollama"
)

// =============================================================================
// FAKES
// =============================================================================

// scriptedStream replays fragments and can run a hook before each Next,
// which is how the tests model "the user pressed the interrupt key
// after fragment k".
type scriptedStream struct {
	fragments  []ollama.Fragment
	pos        int
	closed     bool
	beforeNext func(pos int)
	errAt      int // Next at this position fails; -1 disables
	err        error
}

func newScriptedStream(contents ...string) *scriptedStream {
	s := &scriptedStream{errAt: -1}
	for _, c := range contents {
		s.fragments = append(s.fragments, ollama.Fragment{Content: c})
	}
	s.fragments = append(s.fragments, ollama.Fragment{Done: true, Stats: &ollama.StreamStats{}})
	return s
}

func (s *scriptedStream) Next(ctx context.Context) (ollama.Fragment, error) {
	if s.beforeNext != nil {
		s.beforeNext(s.pos)
	}
	if s.errAt >= 0 && s.pos == s.errAt {
		return ollama.Fragment{}, s.err
	}
	if s.pos >= len(s.fragments) {
		return ollama.Fragment{}, io.EOF
	}
	frag := s.fragments[s.pos]
	s.pos++
	return frag, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// fakeTransport implements Transport with an in-memory log and a
// scripted stream.
type fakeTransport struct {
	history []ollama.Message
	stream  *scriptedStream
	sendErr error
}

func (t *fakeTransport) Send(ctx context.Context, userText string) (FragmentStream, error) {
	t.history = append(t.history, ollama.NewUserMessage(userText))
	if t.sendErr != nil {
		return nil, t.sendErr
	}
	return t.stream, nil
}

func (t *fakeTransport) Commit(assistant string) {
	t.history = append(t.history, ollama.NewAssistantMessage(assistant))
}

func (t *fakeTransport) History() []ollama.Message { return t.history }
func (t *fakeTransport) Clear()                    { t.history = nil }

// transcriptView adapts a model.Transcript to the View interface the
// way the real surfaces do, recording a snapshot of the in-progress
// reply at every redraw.
type transcriptView struct {
	transcript *model.Transcript
	snapshots  []string
	failTurn   error
	redrawErr  error
	redraws    int
}

func newTranscriptView() *transcriptView {
	return &transcriptView{transcript: model.NewTranscript("test-model")}
}

func (v *transcriptView) BeginTurn(userText string) {
	v.transcript.AddUserTurn(userText)
	v.transcript.AddAssistantTurn()
}

func (v *transcriptView) AppendFragment(content string) {
	v.transcript.AppendToLast(content)
}

func (v *transcriptView) FinishTurn(stats *ollama.StreamStats) {
	v.transcript.FinalizeLast(stats)
}

func (v *transcriptView) MarkInterrupted() {
	v.transcript.InterruptLast()
}

func (v *transcriptView) FailTurn(err error) {
	v.failTurn = err
	v.transcript.FinalizeLast(nil)
}

func (v *transcriptView) Redraw() error {
	v.redraws++
	if last := v.transcript.Last(); last != nil {
		v.snapshots = append(v.snapshots, last.Text())
	}
	return v.redrawErr
}

func (v *transcriptView) Clear() {
	v.transcript.Clear()
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

func TestRunTurnCompletedPersistsBothLogs(t *testing.T) {
	transport := &fakeTransport{stream: newScriptedStream("Hello", " ", "there")}
	view := newTranscriptView()
	tok := NewToken()

	state, err := RunTurn(context.Background(), "Hello there", transport, view, tok)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if state != TurnCompleted {
		t.Fatalf("state = %v, want completed", state)
	}

	// Transport log: user then assistant, identical content to the view.
	if len(transport.history) != 2 {
		t.Fatalf("transport history len = %d, want 2", len(transport.history))
	}
	if transport.history[0].Role != "user" || transport.history[0].Content != "Hello there" {
		t.Errorf("history[0] = %+v", transport.history[0])
	}
	if transport.history[1].Role != "assistant" || transport.history[1].Content != "Hello there" {
		t.Errorf("history[1] = %+v", transport.history[1])
	}

	last := view.transcript.Last()
	if last.Text() != "Hello there" || last.Streaming || last.Interrupted {
		t.Errorf("view last turn = %q streaming=%v interrupted=%v",
			last.Text(), last.Streaming, last.Interrupted)
	}
	if !transport.stream.closed {
		t.Error("stream not closed")
	}
}

func TestRunTurnPrefixGrowth(t *testing.T) {
	transport := &fakeTransport{stream: newScriptedStream("a", "bc", "def", "g")}
	view := newTranscriptView()

	if _, err := RunTurn(context.Background(), "go", transport, view, NewToken()); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	prev := ""
	for _, snap := range view.snapshots {
		if !strings.HasPrefix(snap, prev) {
			t.Fatalf("snapshot %q does not extend %q", snap, prev)
		}
		prev = snap
	}
}

func TestRunTurnInterruptionDeterminism(t *testing.T) {
	// Cancel the token right after the second fragment has been
	// delivered. The view must end with exactly two fragments plus the
	// marker, and the transport log must not gain an assistant message.
	tok := NewToken()
	stream := newScriptedStream("one ", "two ", "three ")
	stream.beforeNext = func(pos int) {
		if pos == 2 {
			tok.Cancel()
		}
	}
	transport := &fakeTransport{stream: stream}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "count", transport, view, tok)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if state != TurnInterrupted {
		t.Fatalf("state = %v, want interrupted", state)
	}

	last := view.transcript.Last()
	want := "one two " + model.InterruptedMarker
	if last.Text() != want {
		t.Errorf("view last = %q, want %q", last.Text(), want)
	}
	if !last.Interrupted {
		t.Error("last turn not marked interrupted")
	}

	if len(transport.history) != 1 {
		t.Fatalf("transport history len = %d, want only the user message", len(transport.history))
	}
	if transport.history[0].Role != "user" {
		t.Errorf("history[0] role = %q", transport.history[0].Role)
	}
}

func TestRunTurnLogDivergenceAfterInterrupt(t *testing.T) {
	tok := NewToken()
	stream := newScriptedStream("x")
	stream.beforeNext = func(pos int) {
		if pos == 1 {
			tok.Cancel()
		}
	}
	transport := &fakeTransport{stream: stream}
	view := newTranscriptView()

	if _, err := RunTurn(context.Background(), "hi", transport, view, tok); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	// View keeps the interrupted assistant turn the transport log never
	// records: view is exactly one entry longer.
	if got, want := view.transcript.Len(), len(transport.history)+1; got != want {
		t.Errorf("view len = %d, transport len = %d, want view = transport+1",
			view.transcript.Len(), len(transport.history))
	}
}

func TestRunTurnCancelDuringFinalReadNeverCommits(t *testing.T) {
	// The cancel and a clear land while the final line is being read,
	// after the between-fragment check has already passed. The reply
	// must not be committed into the just-cleared transport log.
	tok := NewToken()
	stream := newScriptedStream("stale reply")
	transport := &fakeTransport{stream: stream}
	stream.beforeNext = func(pos int) {
		if pos == 1 {
			tok.Cancel()
			transport.Clear()
		}
	}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "hi", transport, view, tok)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if state != TurnInterrupted {
		t.Errorf("state = %v, want interrupted", state)
	}
	if len(transport.history) != 0 {
		t.Errorf("cleared transport log mutated after cancel: %+v", transport.history)
	}
	if last := view.transcript.Last(); last == nil || !last.Interrupted {
		t.Error("view turn not marked interrupted")
	}
}

func TestRunTurnCancelDuringBodyDrainNeverCommits(t *testing.T) {
	// Same window on the no-done-marker path: the body ends, the loop
	// breaks on EOF, and the cancel arrived during that last read.
	tok := NewToken()
	stream := &scriptedStream{
		fragments: []ollama.Fragment{{Content: "partial"}},
		errAt:     -1,
	}
	transport := &fakeTransport{stream: stream}
	stream.beforeNext = func(pos int) {
		if pos == 1 {
			tok.Cancel()
			transport.Clear()
		}
	}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "hi", transport, view, tok)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if state != TurnInterrupted {
		t.Errorf("state = %v, want interrupted", state)
	}
	if len(transport.history) != 0 {
		t.Errorf("transport log gained entries after cancel: %+v", transport.history)
	}
}

func TestRunTurnSendFailure(t *testing.T) {
	sendErr := errors.New("connection refused")
	transport := &fakeTransport{sendErr: sendErr}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "hi", transport, view, NewToken())
	if state != TurnFailed {
		t.Fatalf("state = %v, want failed", state)
	}
	if !errors.Is(err, sendErr) {
		t.Errorf("err = %v, want wrapped send error", err)
	}

	// User message stays; no assistant message.
	if len(transport.history) != 1 || transport.history[0].Role != "user" {
		t.Errorf("transport history = %+v", transport.history)
	}
	if view.failTurn == nil {
		t.Error("view not told about the failure")
	}
}

func TestRunTurnMidStreamFailureKeepsPartialInViewOnly(t *testing.T) {
	stream := newScriptedStream("partial ", "answer")
	stream.errAt = 1
	stream.err = errors.New("connection reset")
	transport := &fakeTransport{stream: stream}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "hi", transport, view, NewToken())
	if state != TurnFailed || err == nil {
		t.Fatalf("state = %v err = %v, want failed turn", state, err)
	}

	if got := view.transcript.Last().Text(); got != "partial " {
		t.Errorf("view partial = %q", got)
	}
	if len(transport.history) != 1 {
		t.Errorf("transport history len = %d, want 1 (no assistant commit)", len(transport.history))
	}
}

func TestRunTurnSwallowsRenderErrors(t *testing.T) {
	transport := &fakeTransport{stream: newScriptedStream("a", "b")}
	view := newTranscriptView()
	view.redrawErr = errors.New("draw failed")

	state, err := RunTurn(context.Background(), "hi", transport, view, NewToken())
	if err != nil || state != TurnCompleted {
		t.Fatalf("state = %v err = %v; a failed draw must not abort the turn", state, err)
	}
	if view.redraws == 0 {
		t.Error("redraw never attempted")
	}
	if transport.history[1].Content != "ab" {
		t.Errorf("assistant commit = %q, want %q", transport.history[1].Content, "ab")
	}
}

func TestRunTurnCancelledBeforeFirstFragment(t *testing.T) {
	tok := NewToken()
	tok.Cancel()
	transport := &fakeTransport{stream: newScriptedStream("never seen")}
	view := newTranscriptView()

	state, err := RunTurn(context.Background(), "hi", transport, view, tok)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if state != TurnInterrupted {
		t.Fatalf("state = %v, want interrupted", state)
	}
	if got := view.transcript.Last().Text(); got != model.InterruptedMarker {
		t.Errorf("view last = %q, want bare marker", got)
	}
	if len(transport.history) != 1 {
		t.Errorf("transport history len = %d, want 1", len(transport.history))
	}
}
