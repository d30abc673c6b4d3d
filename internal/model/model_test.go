// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestTurnAppendGrowsBySuffix(t *testing.T) {
	turn := NewAssistantTurn()
	fragments := []string{"Hel", "lo", " the", "re"}

	prev := ""
	for _, f := range fragments {
		turn.Append(f)
		cur := turn.Text()
		if !strings.HasPrefix(cur, prev) {
			t.Fatalf("text %q does not extend previous %q", cur, prev)
		}
		prev = cur
	}
	if prev != "Hello there" {
		t.Errorf("final text = %q", prev)
	}
}

func TestTurnFinalizeFreezesText(t *testing.T) {
	turn := NewAssistantTurn()
	turn.Append("done deal")
	turn.Finalize(nil)

	if turn.Streaming {
		t.Error("turn still streaming after Finalize")
	}
	turn.Append(" extra")
	if turn.Text() != "done deal" {
		t.Errorf("text after post-finalize append = %q", turn.Text())
	}
}

func TestTurnInterruptAppendsMarkerOnce(t *testing.T) {
	turn := NewAssistantTurn()
	turn.Append("partial rep")
	turn.Interrupt()

	want := "partial rep" + InterruptedMarker
	if turn.Text() != want {
		t.Errorf("text = %q, want %q", turn.Text(), want)
	}
	if !turn.Interrupted {
		t.Error("Interrupted flag not set")
	}

	// A second interrupt must not double the marker.
	turn.Interrupt()
	if turn.Text() != want {
		t.Errorf("text after second Interrupt = %q, want %q", turn.Text(), want)
	}
}

func TestInterruptEmptyTurn(t *testing.T) {
	turn := NewAssistantTurn()
	turn.Interrupt()
	if turn.Text() != InterruptedMarker {
		t.Errorf("text = %q, want bare marker", turn.Text())
	}
}

func TestTurnFailAppendsErrorMarker(t *testing.T) {
	turn := NewAssistantTurn()
	turn.Append("partial rep")
	turn.Fail("connection lost")

	want := "partial rep\n[error] connection lost"
	if turn.Text() != want {
		t.Errorf("text = %q, want %q", turn.Text(), want)
	}
	if !turn.Failed || turn.Streaming {
		t.Error("Fail did not finalize the turn")
	}

	// Finalized; later mutation is a no-op.
	turn.Append("more")
	turn.Fail("again")
	if turn.Text() != want {
		t.Errorf("text after second Fail = %q, want %q", turn.Text(), want)
	}
}

func TestTurnFailEmptyTurn(t *testing.T) {
	turn := NewAssistantTurn()
	turn.Fail("boom")
	if turn.Text() != "[error] boom" {
		t.Errorf("text = %q, want bare error marker", turn.Text())
	}
}

func TestTurnPreview(t *testing.T) {
	turn := NewUserTurn("line one\nline two that keeps going for quite a while longer")
	got := turn.Preview(20)
	if strings.Contains(got, "\n") {
		t.Errorf("preview contains newline: %q", got)
	}
	if len([]rune(got)) > 20 {
		t.Errorf("preview too long: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated preview missing ellipsis: %q", got)
	}
}

func TestTranscriptTitleFromFirstUserTurn(t *testing.T) {
	c := NewTranscript("llama3.3")
	c.AddUserTurn("What is the airspeed velocity of an unladen swallow?")
	if c.Title == "New conversation" {
		t.Error("title not set from first user turn")
	}
	title := c.Title
	c.AddUserTurn("Another question")
	if c.Title != title {
		t.Error("title changed by later turn")
	}
}

func TestTranscriptClearIsIdempotent(t *testing.T) {
	c := NewTranscript("llama3.3")
	c.AddUserTurn("hi")
	c.AddAssistantTurn()
	c.AppendToLast("hello")
	c.FinalizeLast(nil)

	c.Clear()
	if !c.IsEmpty() || c.Title != "New conversation" {
		t.Errorf("after clear: len=%d title=%q", c.Len(), c.Title)
	}
	c.Clear()
	if !c.IsEmpty() {
		t.Error("second clear changed state")
	}
}

func TestTranscriptInterruptLast(t *testing.T) {
	c := NewTranscript("llama3.3")
	c.AddUserTurn("hi")
	c.AddAssistantTurn()
	c.AppendToLast("stream of ")
	c.AppendToLast("tokens")
	c.InterruptLast()

	last := c.Last()
	if last.Text() != "stream of tokens"+InterruptedMarker {
		t.Errorf("last = %q", last.Text())
	}
	if last.Streaming {
		t.Error("interrupted turn still streaming")
	}
}
