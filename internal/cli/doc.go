// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing, the plain line-oriented chat
// surface, and the non-interactive models subcommand. The
// plain surface shares the turn controller and command set with the
// full-screen UI; only the rendering differs.
package cli
