// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Adaptive colors pick the variant for the terminal's background.
var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}
	TextMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	SurfaceDim  = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	Border      = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	UserLabel = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	AssistantLabel = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(TextMuted)

	ErrorText = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	StatsText = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)

	HeaderBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Border).
			Padding(0, 1)
)

// StatusIndicators are ASCII-safe markers for terminals without emoji.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
	Info    string
}{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}

// RenderError formats an error line with the error indicator.
func RenderError(msg string) string {
	return ErrorText.Render(StatusIndicators.Error + " " + msg)
}

// RenderInfo formats an informational line.
func RenderInfo(msg string) string {
	return MutedText.Render(StatusIndicators.Info + " " + msg)
}
