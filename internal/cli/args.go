// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "strings"

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// Args is the parsed command line. The first positional argument is the
// subcommand; flags come in --flag value, --flag=value, and bare
// boolean forms.
type Args struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// ParseArgs parses raw arguments (without the program name).
func ParseArgs(raw []string) *Args {
	a := &Args{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			a.positional = append(a.positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			value := name[eq+1:]
			name = name[:eq]
			if value == "true" || value == "false" {
				a.boolFlags[name] = value == "true"
			} else {
				a.flags[name] = value
			}
			i++
			continue
		}

		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && !isBoolFlag(name) {
			a.flags[name] = raw[i+1]
			i += 2
		} else {
			a.boolFlags[name] = true
			i++
		}
	}

	if len(a.positional) > 0 {
		a.subcommand = a.positional[0]
	}
	return a
}

// Value-less flags; everything after them is positional.
func isBoolFlag(name string) bool {
	switch name {
	case "plain", "no-markdown", "no-stream", "help", "version", "h", "v":
		return true
	}
	return false
}

// Subcommand returns the first positional argument, or "".
func (a *Args) Subcommand() string { return a.subcommand }

// Flag returns a string flag value, or "".
func (a *Args) Flag(name string) string { return a.flags[name] }

// Bool reports whether a boolean flag was set.
func (a *Args) Bool(name string) bool { return a.boolFlags[name] }

// Rest returns the positional arguments after the subcommand.
func (a *Args) Rest() []string {
	if len(a.positional) <= 1 {
		return nil
	}
	return a.positional[1:]
}
