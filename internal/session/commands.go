// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"golang.org/x/text/cases"
)

// =============================================================================
// INPUT CLASSIFICATION
// =============================================================================

// Command is the classification of one line of user input.
type Command int

const (
	// CommandEmpty - whitespace-only input, re-prompt.
	CommandEmpty Command = iota
	// CommandExit - end the session.
	CommandExit
	// CommandClear - reset the conversation and the transport log.
	CommandClear
	// CommandMessage - ordinary chat input.
	CommandMessage
)

// exitWords are the inputs that end the session. Comparison is
// case-insensitive after trimming surrounding whitespace.
var exitWords = []string{"exit", "quit", ":q", ":wq"}

// Classify maps a raw input line to a command. For CommandMessage the
// returned text is the input with surrounding whitespace trimmed;
// interior whitespace is preserved. "exit now" is a message, not a
// command.
func Classify(input string) (Command, string) {
	text := strings.TrimSpace(input)
	if text == "" {
		return CommandEmpty, ""
	}

	// A Caser carries state; it cannot be shared across goroutines.
	folded := cases.Fold().String(text)
	for _, w := range exitWords {
		if folded == w {
			return CommandExit, text
		}
	}
	if folded == "clear" {
		return CommandClear, text
	}
	return CommandMessage, text
}
