// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"io"
	"strings"

	"github.com/jeranaias/streamchat/internal/ollama"
)

// =============================================================================
// TURN CONTROLLER
// =============================================================================

// TurnState is the terminal state of one chat turn.
type TurnState int

const (
	// TurnCompleted - the stream was exhausted naturally.
	TurnCompleted TurnState = iota
	// TurnInterrupted - the user cancelled mid-stream.
	TurnInterrupted
	// TurnFailed - the transport failed; any partial output is kept in
	// the view but nothing was recorded for the service.
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnCompleted:
		return "completed"
	case TurnInterrupted:
		return "interrupted"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FragmentStream is the pull side of a streaming reply.
// *ollama.Stream satisfies it.
type FragmentStream interface {
	Next(ctx context.Context) (ollama.Fragment, error)
	Close() error
}

// Transport owns the message history the service actually sees. Send
// must record the user message before issuing the request; Commit
// records the assistant reply and is called by the controller only when
// the stream exhausted naturally. An interrupted or failed turn is
// never committed, so the service history keeps the user message with
// no reply.
type Transport interface {
	Send(ctx context.Context, userText string) (FragmentStream, error)
	Commit(assistant string)
	History() []ollama.Message
	Clear()
}

// View is the displayed transcript plus its drawing surface. The
// controller appends fragments strictly in order, so the assistant text
// a view holds only ever grows by suffix during a turn; the one
// exception is MarkInterrupted, which rewrites the in-progress reply as
// partial + "\n[interrupted]".
type View interface {
	BeginTurn(userText string)
	AppendFragment(content string)
	FinishTurn(stats *ollama.StreamStats)
	MarkInterrupted()
	FailTurn(err error)
	Redraw() error
	Clear()
}

// RunTurn executes one chat turn: record the user message, stream the
// reply fragment by fragment into the view, and resolve to a terminal
// state. The token is checked between fragments; a draw failure never
// aborts the turn.
func RunTurn(ctx context.Context, userText string, transport Transport, view View, token *Token) (TurnState, error) {
	view.BeginTurn(userText)
	_ = view.Redraw()

	// Tie the stream's context to the token so a cancel also unblocks a
	// read that is waiting on the network.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-streamCtx.Done():
		}
	}()

	stream, err := transport.Send(streamCtx, userText)
	if err != nil {
		if token.Cancelled() {
			return finishInterrupted(view), nil
		}
		view.FailTurn(err)
		_ = view.Redraw()
		return TurnFailed, err
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		if token.Cancelled() {
			return finishInterrupted(view), nil
		}

		frag, err := stream.Next(streamCtx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if token.Cancelled() {
				return finishInterrupted(view), nil
			}
			view.FailTurn(err)
			_ = view.Redraw()
			return TurnFailed, err
		}

		// A cancel can land while Next is blocked on the network,
		// after the check above has already passed. Re-check before
		// acting on the fragment: a post-cancel fragment must never
		// render, and a stale commit would mutate a log the user may
		// have just cleared.
		if token.Cancelled() {
			return finishInterrupted(view), nil
		}

		if frag.Done {
			transport.Commit(reply.String())
			view.FinishTurn(frag.Stats)
			_ = view.Redraw()
			return TurnCompleted, nil
		}

		reply.WriteString(frag.Content)
		view.AppendFragment(frag.Content)
		_ = view.Redraw()
	}

	// Exhausted without an explicit done fragment.
	if token.Cancelled() {
		return finishInterrupted(view), nil
	}
	transport.Commit(reply.String())
	view.FinishTurn(nil)
	_ = view.Redraw()
	return TurnCompleted, nil
}

func finishInterrupted(view View) TurnState {
	view.MarkInterrupted()
	_ = view.Redraw()
	return TurnInterrupted
}
