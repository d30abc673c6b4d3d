// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the full-screen chat surface.
//
// The surface is a bubbletea program. Turn execution lives in package
// session; a turn runs on its own goroutine and reports back through
// program messages, so the transcript is only ever mutated on the
// update loop. Stream fragments are batched and flushed to the viewport
// on a fixed tick, which caps repaint cost on fast models without
// dropping text.
package chat
