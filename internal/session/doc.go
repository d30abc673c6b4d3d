// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the turn machinery shared by every chat
// surface: input classification, the single-use cancellation token,
// the service-visible message log, and the controller that runs one
// streaming turn against a transport and a view.
//
// The displayed transcript and the service-visible history diverge on
// purpose. An interrupted reply stays on screen, marked
// "[interrupted]", but is never sent back to the service; the model
// only ever sees turns it actually finished.
package session
