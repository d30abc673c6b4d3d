// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/streamchat/internal/model"
	"github.com/jeranaias/streamchat/internal/ui/styles"
	"github.com/jeranaias/streamchat/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	if m.state == StateFarewell {
		return m.renderFarewell()
	}

	return strings.Join([]string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}, "\n")
}

func (m Model) renderHeader() string {
	title := styles.RenderRainbow("streamchat", m.frame/3)
	info := styles.MutedText.Render(
		util.TruncateWidth(m.transport.Model(), m.width/3))

	line := title + "  " + info
	return styles.HeaderBorder.Width(m.width - 2).Render(line)
}

func (m Model) renderInput() string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Border).
		Width(m.width - 2).
		Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch m.state {
	case StateStreaming:
		spin := styles.SpinnerFrames[m.frame%len(styles.SpinnerFrames)]
		left = styles.MutedText.Render(spin + " streaming  (esc or ctrl+c to interrupt)")
	default:
		if m.lastError != "" {
			left = styles.RenderError(util.TruncateWidth(m.lastError, m.width-20))
		} else {
			left = styles.MutedText.Render("enter to send · clear resets · exit quits")
		}
	}
	return util.PadWidth(left, m.width)
}

func (m Model) renderFarewell() string {
	bye := styles.RenderRainbow("bye", m.frame/3)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, bye)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

func (m *Model) renderTranscript() string {
	if m.transcript.IsEmpty() {
		return m.renderEmptyState()
	}

	var parts []string
	for _, turn := range m.transcript.Turns() {
		parts = append(parts, m.renderTurn(turn))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderEmptyState() string {
	msg := styles.MutedText.Render("Say something to get started.")
	return lipgloss.NewStyle().Margin(1, 2).Render(msg)
}

func (m *Model) renderTurn(turn *model.Turn) string {
	switch turn.Role {
	case model.RoleUser:
		return m.renderUserTurn(turn)
	case model.RoleAssistant:
		return m.renderAssistantTurn(turn)
	default:
		return turn.Text()
	}
}

func (m *Model) renderUserTurn(turn *model.Turn) string {
	label := styles.UserLabel.Render(turn.Role.DisplayName())
	body := lipgloss.NewStyle().MarginLeft(2).Render(turn.Text())
	return label + "\n" + body
}

func (m *Model) renderAssistantTurn(turn *model.Turn) string {
	label := styles.AssistantLabel.Render(turn.Role.DisplayName())

	content := turn.Text()
	if turn.Streaming {
		// Live text stays plain; markdown reflow mid-stream would make
		// earlier lines jump around.
		if content == "" {
			content = "_"
		} else {
			content += "_"
		}
	} else if turn.Interrupted {
		content = m.renderInterrupted(content)
	} else if turn.Failed {
		content = m.renderFailed(content)
	} else if m.markdown && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	} else {
		content = highlightCodeBlocks(content)
	}

	body := lipgloss.NewStyle().MarginLeft(2).Render(content)

	if stats := m.renderTurnStats(turn); stats != "" {
		body += "\n" + stats
	}
	return label + "\n" + body
}

// renderInterrupted styles the trailing marker line without touching
// the partial text above it.
func (m *Model) renderInterrupted(content string) string {
	if !strings.HasSuffix(content, model.InterruptedMarker) {
		return content
	}
	partial := strings.TrimSuffix(content, model.InterruptedMarker)
	marker := styles.MutedText.Italic(true).Render("[interrupted]")
	return partial + "\n" + marker
}

// renderFailed styles the trailing error-marker line a failed turn
// carries, leaving any partial text above it untouched.
func (m *Model) renderFailed(content string) string {
	idx := strings.LastIndex(content, "[error] ")
	if idx < 0 {
		return content
	}
	return content[:idx] + styles.RenderError(content[idx:])
}

// highlightCodeBlocks syntax-highlights fenced code in a completed
// reply when the markdown renderer is off. Any highlighting failure
// leaves the fence as-is.
func highlightCodeBlocks(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}

	parts := strings.Split(content, "```")
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 0 {
			b.WriteString(part)
			continue
		}
		lang := ""
		code := part
		if nl := strings.IndexByte(part, '\n'); nl >= 0 {
			lang = strings.TrimSpace(part[:nl])
			code = part[nl+1:]
		}
		var hl strings.Builder
		if err := quick.Highlight(&hl, code, lang, "terminal256", "monokai"); err != nil {
			b.WriteString("```" + part + "```")
			continue
		}
		b.WriteString(hl.String())
	}
	return b.String()
}

func (m *Model) renderTurnStats(turn *model.Turn) string {
	if !m.showStats || turn.Stats == nil {
		return ""
	}
	s := turn.Stats
	if s.EvalCount == 0 {
		return ""
	}
	line := fmt.Sprintf("%d tokens · %.1f tok/s", s.EvalCount, s.TokensPerSecond())
	if s.TimeToFirst > 0 {
		line += fmt.Sprintf(" · first token %.2fs", s.TimeToFirst.Seconds())
	}
	return lipgloss.NewStyle().MarginLeft(2).Render(styles.StatsText.Render(line))
}
