// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Status badge per connectivity state
	StatusConnected    lipgloss.Style
	StatusDegraded     lipgloss.Style
	StatusDisconnected lipgloss.Style
	StatusBusy         lipgloss.Style

	// Transcript
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	MessageText    lipgloss.Style
	StrongText     lipgloss.Style
	EmText         lipgloss.Style
	CodeText       lipgloss.Style
	StreamCursor   lipgloss.Style
	WarningText    lipgloss.Style

	// Welcome view
	WelcomeTitle lipgloss.Style
	WelcomeHint  lipgloss.Style
	Chip         lipgloss.Style
	ChipKey      lipgloss.Style

	// Input area
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Footer
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Settings view
	SettingsTitle lipgloss.Style
	SettingsLabel lipgloss.Style
	SettingsValue lipgloss.Style
	SettingsError lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()

	t := &Theme{
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}

	t.Header = lipgloss.NewStyle().
		Background(BlueDeep).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#E5E7EB"}).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true)

	t.StatusConnected = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusDegraded = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusDisconnected = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Sky).Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.MessageText = lipgloss.NewStyle().Foreground(Text)
	t.StrongText = lipgloss.NewStyle().Bold(true)
	t.EmText = lipgloss.NewStyle().Italic(true)
	t.CodeText = lipgloss.NewStyle().Foreground(Sky).Background(Overlay)
	t.StreamCursor = lipgloss.NewStyle().Foreground(Blue)
	t.WarningText = lipgloss.NewStyle().Foreground(Amber)

	t.WelcomeTitle = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.WelcomeHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.Chip = lipgloss.NewStyle().
		Foreground(Sky).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.ChipKey = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Blue).Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().Foreground(Sky)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.SettingsTitle = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.SettingsLabel = lipgloss.NewStyle().Foreground(TextMuted)
	t.SettingsValue = lipgloss.NewStyle().Foreground(Text)
	t.SettingsError = lipgloss.NewStyle().Foreground(Rose)

	return t
}
