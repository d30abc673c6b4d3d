// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the TOML configuration at
// ~/.streamchat/config.toml. Environment variables and command-line
// flags override file values; a missing file yields the defaults.
package config
