// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"time"
)

// =============================================================================
// STREAM - PULL-BASED NDJSON FRAGMENT READER
// =============================================================================

// Stream is a live /api/chat response. Callers pull fragments with Next
// until it reports exhaustion, then Close. Closing early aborts the
// underlying request; the service stops generating.
type Stream struct {
	body   io.ReadCloser
	r      *bufio.Reader
	cancel context.CancelFunc

	started time.Time
	firstAt time.Time
	done    bool
	closed  bool
}

func newStream(body io.ReadCloser, cancel context.CancelFunc) *Stream {
	return &Stream{
		body:    body,
		r:       bufio.NewReader(body),
		cancel:  cancel,
		started: time.Now(),
	}
}

// Next returns the next fragment of assistant output. It returns io.EOF
// once the stream is exhausted, either by the service's done marker or
// by the body ending. Blank lines are skipped. A line that is not valid
// JSON is skipped rather than aborting the stream; the service is known
// to interleave keep-alive newlines under load.
func (s *Stream) Next(ctx context.Context) (Fragment, error) {
	if s.done {
		return Fragment{}, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return Fragment{}, newClientError(ErrorTypeTimeout, "stream cancelled", ctx.Err())
		default:
		}

		line, err := s.r.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := trimLineEnding(line)
			if len(trimmed) == 0 {
				continue
			}

			var chunk chatStreamLine
			if jsonErr := json.Unmarshal(trimmed, &chunk); jsonErr != nil {
				continue
			}

			if chunk.Done {
				s.done = true
				return Fragment{
					Done:       true,
					DoneReason: chunk.DoneReason,
					Stats:      s.statsFrom(&chunk),
				}, nil
			}

			if chunk.Message.Content != "" {
				if s.firstAt.IsZero() {
					s.firstAt = time.Now()
				}
				return Fragment{Content: chunk.Message.Content}, nil
			}
			continue
		}

		if err == io.EOF {
			// Body ended without a done marker. Treat as natural
			// exhaustion so partial-but-complete responses still land.
			s.done = true
			return Fragment{Done: true, Stats: s.statsFrom(nil)}, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return Fragment{}, newClientError(ErrorTypeTimeout, "stream cancelled", ctx.Err())
			}
			return Fragment{}, newClientError(ErrorTypeStream, "failed to read stream", err)
		}
	}
}

// Close releases the stream. Safe to call more than once and after
// exhaustion.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return s.body.Close()
}

func (s *Stream) statsFrom(chunk *chatStreamLine) *StreamStats {
	stats := &StreamStats{}
	if !s.firstAt.IsZero() {
		stats.TimeToFirst = s.firstAt.Sub(s.started)
	}
	if chunk != nil {
		stats.TotalDuration = time.Duration(chunk.TotalDuration)
		stats.LoadDuration = time.Duration(chunk.LoadDuration)
		stats.PromptEvalCount = chunk.PromptEvalCount
		stats.EvalCount = chunk.EvalCount
		stats.EvalDuration = time.Duration(chunk.EvalDuration)
	}
	return stats
}

// trimLineEnding strips trailing \n and \r from a raw NDJSON line.
func trimLineEnding(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
