// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// RAINBOW TITLE
// =============================================================================

// rainbowColors is a Solarized-accent cycle used for the animated
// header title.
var rainbowColors = []lipgloss.Color{
	lipgloss.Color("#b58900"), // yellow
	lipgloss.Color("#cb4b16"), // orange
	lipgloss.Color("#dc322f"), // red
	lipgloss.Color("#d33682"), // magenta
	lipgloss.Color("#6c71c4"), // violet
	lipgloss.Color("#268bd2"), // blue
	lipgloss.Color("#2aa198"), // cyan
	lipgloss.Color("#859900"), // green
}

// RenderRainbow colors each rune of text from the rainbow cycle,
// shifted by frame so successive redraws animate the title.
func RenderRainbow(text string, frame int) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range []rune(text) {
		c := rainbowColors[(i+frame)%len(rainbowColors)]
		b.WriteString(lipgloss.NewStyle().Foreground(c).Bold(true).Render(string(r)))
	}
	return b.String()
}

// SpinnerFrames are ASCII-safe spinner glyphs.
var SpinnerFrames = []string{"|", "/", "-", "\\"}
