// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "sync"

// =============================================================================
// CANCELLATION TOKEN
// =============================================================================

// Token is a single-use cancellation signal for one streaming turn.
// It moves from active to cancelled exactly once and never back.
// Cancel is safe to call from any goroutine and is idempotent.
type Token struct {
	mu        sync.Mutex
	cancelled bool
	done      chan struct{}
}

// NewToken returns an active token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel moves the token to the cancelled state. Further calls are
// no-ops.
func (t *Token) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	close(t.done)
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done returns a channel closed on cancellation, for select loops.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource issues turn tokens, keeping at most one live token at a
// time. Issuing a new token cancels the previous one, so a stale
// handler can never resurrect a finished turn.
type TokenSource struct {
	mu      sync.Mutex
	current *Token
}

// NewTokenSource returns an empty source.
func NewTokenSource() *TokenSource {
	return &TokenSource{}
}

// Issue cancels any live token and returns a fresh one.
func (s *TokenSource) Issue() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = NewToken()
	return s.current
}

// Current returns the most recently issued token, or nil before the
// first Issue.
func (s *TokenSource) Current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CancelCurrent cancels the live token, if any.
func (s *TokenSource) CancelCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
}
