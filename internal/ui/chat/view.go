// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
	"github.com/kamalbisht/mcp-assistant-tui/internal/render"
	"github.com/kamalbisht/mcp-assistant-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.mode == viewSettings {
		return m.settingsView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	if m.store.Len() == 0 {
		b.WriteString(m.welcomeView())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

// =============================================================================
// HEADER AND STATUS
// =============================================================================

func (m *Model) headerView() string {
	title := m.theme.HeaderTitle.Render("MCP Assistant")
	badge := m.statusBadge()

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(badge) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + badge)
}

func (m *Model) statusBadge() string {
	label := m.status.Label()
	switch m.status {
	case monitor.StatusConnected:
		return m.theme.StatusConnected.Render("● " + label)
	case monitor.StatusDegraded:
		return m.theme.StatusDegraded.Render("◐ " + label)
	case monitor.StatusDisconnected, monitor.StatusError:
		return m.theme.StatusDisconnected.Render("○ " + label)
	case monitor.StatusStreaming, monitor.StatusLoading, monitor.StatusChecking, monitor.StatusReconnecting:
		return m.theme.StatusBusy.Render(m.spinner.View() + label)
	default:
		return label
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m *Model) renderTranscript() string {
	msgs := m.store.Messages()
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	label := m.theme.AssistantLabel
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel
	}

	header := label.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(render.Timestamp(msg.CreatedAt))

	body := m.styledContent(msg.Content)
	if msg.Streaming && m.blinkOn {
		body += m.theme.StreamCursor.Render("▌")
	}

	if msg.Chart != "" && !msg.Streaming {
		if chart := RenderChart(msg.Chart, m.chartCap); chart != "" {
			body += "\n" + chart
		}
	}

	return header + "\n" + body
}

// styledContent applies the answer markup with terminal styles instead
// of HTML tags.
func (m *Model) styledContent(text string) string {
	return render.Apply(text, render.Markup{
		Strong: func(s string) string { return m.theme.StrongText.Render(s) },
		Em:     func(s string) string { return m.theme.EmText.Render(s) },
		Code:   func(s string) string { return m.theme.CodeText.Render(s) },
	})
}

// =============================================================================
// WELCOME VIEW
// =============================================================================

func (m *Model) welcomeView() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.theme.WelcomeTitle.Render("👋 Welcome to MCP Assistant"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.WelcomeHint.Render("Ask about your metrics, costs and errors — or try one of these:"))
	b.WriteString("\n\n")

	for i, chip := range WelcomeChips {
		b.WriteString("  ")
		b.WriteString(m.theme.ChipKey.Render(fmt.Sprintf("alt+%d", i+1)))
		b.WriteString(" ")
		b.WriteString(m.theme.Chip.Render(util.TruncateWidth(chip, m.width-12)))
		b.WriteString("\n")
	}

	content := b.String()
	// Pad to the viewport height so the input stays anchored.
	lines := strings.Count(content, "\n")
	for lines < m.viewport.Height-1 {
		content += "\n"
		lines++
	}
	return content
}

// =============================================================================
// INPUT AND FOOTER
// =============================================================================

func (m *Model) inputView() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

func (m *Model) footerView() string {
	shortcuts := []struct{ key, desc string }{
		{"Enter", "ask"},
		{"C-l", "clear"},
		{"C-t", "test"},
		{"C-s", "settings"},
		{"C-c", "quit"},
	}

	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts = append(parts, m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}
	return " " + strings.Join(parts, "  ")
}

// =============================================================================
// SETTINGS VIEW
// =============================================================================

func (m *Model) settingsView() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(" " + m.theme.SettingsTitle.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(" " + m.theme.SettingsLabel.Render("Server URL"))
	b.WriteString("\n ")
	b.WriteString(m.settingsInput.View())
	b.WriteString("\n\n")

	b.WriteString(" " + m.theme.SettingsLabel.Render("Server status: "))
	b.WriteString(m.statusBadge())
	b.WriteString("\n")
	if m.info != nil {
		if m.info.LLMAvailable != nil {
			b.WriteString(" " + m.theme.SettingsLabel.Render("LLM: ") +
				m.theme.SettingsValue.Render(onOff(*m.info.LLMAvailable)))
			b.WriteString("\n")
		}
		if m.info.SSEEnabled != nil {
			b.WriteString(" " + m.theme.SettingsLabel.Render("Streaming: ") +
				m.theme.SettingsValue.Render(onOff(*m.info.SSEEnabled)))
			b.WriteString("\n")
		}
	}

	if m.settingsErr != "" {
		b.WriteString("\n " + m.theme.SettingsError.Render(m.settingsErr))
		b.WriteString("\n")
	}

	b.WriteString("\n " + m.theme.ShortcutKey.Render("Enter") + " " + m.theme.ShortcutDesc.Render("save") +
		"  " + m.theme.ShortcutKey.Render("Esc") + " " + m.theme.ShortcutDesc.Render("back"))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "available"
	}
	return "unavailable"
}
