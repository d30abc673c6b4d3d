// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama implements the HTTP client for an Ollama-compatible
// chat service.
//
// Chat responses stream as NDJSON: one JSON object per line, each
// carrying a fragment of assistant output, terminated by an object with
// done set. Stream exposes those fragments pull-style via Next, so the
// caller decides the pacing and can abandon a response mid-generation
// by closing the stream.
//
// Failures are classified with ClientError and the IsNotRunning,
// IsTimeout, and IsModelNotFound helpers, so interactive surfaces can
// turn them into actionable messages ("is Ollama running?") without
// string matching.
package ollama
