// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles centralizes the lipgloss palette and shared styles so
// both interactive surfaces render consistently. Indicators and spinner
// frames stay ASCII; the client is often used over plain SSH sessions.
package styles
