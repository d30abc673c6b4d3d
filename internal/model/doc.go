// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the displayed conversation: turns and the
// transcript that holds them. These types track what the user has seen,
// which is a different record from the message history the service
// sees (that one lives with the transport in package session).
package model
