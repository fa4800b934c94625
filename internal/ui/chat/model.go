// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/config"
	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
	"github.com/kamalbisht/mcp-assistant-tui/internal/session"
	"github.com/kamalbisht/mcp-assistant-tui/internal/ui/styles"
)

// WelcomeChips are the suggested starter questions shown on an empty
// transcript, submitted with alt+1 through alt+4.
var WelcomeChips = []string{
	"What is my total cost?",
	"Show error rates",
	"Show metrics summary",
	"Help me analyze data",
}

// blinkInterval drives the streaming cursor.
const blinkInterval = 500 * time.Millisecond

// viewMode selects which screen the model draws.
type viewMode int

const (
	viewChat viewMode = iota
	viewSettings
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the assistant TUI.
type Model struct {
	// Collaborators
	controller *session.Controller
	store      *model.Store
	monitor    *monitor.Monitor
	client     *assistant.Client

	// Styling
	theme    *styles.Theme
	keyMap   KeyMap
	chartCap ChartCapability

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Settings view
	settingsInput textinput.Model
	settingsErr   string

	// State
	mode    viewMode
	width   int
	height  int
	ready   bool
	status  monitor.Status
	info    *assistant.HealthInfo
	blinkOn bool
}

// New creates the chat model.
func New(controller *session.Controller, store *model.Store, mon *monitor.Monitor, client *assistant.Client) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about your metrics..."
	input.CharLimit = 2000
	input.Focus()

	settingsInput := textinput.New()
	settingsInput.Placeholder = config.DefaultServerURL
	settingsInput.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		controller:    controller,
		store:         store,
		monitor:       mon,
		client:        client,
		theme:         styles.NewTheme(),
		keyMap:        DefaultKeyMap(),
		chartCap:      DetectChartCapability(os.Getenv),
		input:         input,
		settingsInput: settingsInput,
		spinner:       sp,
		status:        monitor.StatusChecking,
		blinkOn:       true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		blinkTick(),
		m.checkHealthCmd(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		if m.mode == viewSettings {
			return m.updateSettingsKeys(msg)
		}
		return m.updateChatKeys(msg)

	case TranscriptMsg, TranscriptClearedMsg:
		m.refreshTranscript()
		return m, nil

	case StatusMsg:
		m.status = msg.Status
		m.info = msg.Info
		return m, nil

	case SubmitResultMsg:
		// A rejected submission leaves nothing to do; an accepted one
		// already settled through store and monitor notifications.
		return m, nil

	case SettingsSavedMsg:
		if msg.Err != nil {
			m.settingsErr = msg.Err.Error()
			return m, nil
		}
		m.settingsErr = ""
		m.mode = viewChat
		return m, nil

	case BlinkMsg:
		m.blinkOn = !m.blinkOn
		if m.store.Pending() != "" {
			m.refreshTranscript()
		}
		return m, blinkTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.submitCmd(question)

	case key.Matches(msg, m.keyMap.Clear):
		m.controller.ClearSession()
		return m, nil

	case key.Matches(msg, m.keyMap.Test):
		return m, m.checkHealthCmd()

	case key.Matches(msg, m.keyMap.Settings):
		m.settingsInput.SetValue(m.client.BaseURL())
		m.settingsInput.Focus()
		m.settingsErr = ""
		m.mode = viewSettings
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Welcome chips work only while the transcript is empty.
	if m.store.Len() == 0 {
		for i, chip := range []key.Binding{m.keyMap.Chip1, m.keyMap.Chip2, m.keyMap.Chip3, m.keyMap.Chip4} {
			if key.Matches(msg, chip) && i < len(WelcomeChips) {
				return m, m.submitCmd(WelcomeChips[i])
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Back):
		m.mode = viewChat
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.saveSettingsCmd(m.settingsInput.Value())
	}

	var cmd tea.Cmd
	m.settingsInput, cmd = m.settingsInput.Update(msg)
	return m, cmd
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd runs one exchange on the command goroutine. Incremental
// content arrives through the surface as TranscriptMsg; the returned
// message only reports acceptance.
func (m *Model) submitCmd(question string) tea.Cmd {
	return func() tea.Msg {
		accepted := m.controller.Submit(context.Background(), question)
		return SubmitResultMsg{Question: question, Accepted: accepted}
	}
}

// checkHealthCmd probes the server once; the verdict arrives as a
// StatusMsg via the monitor's OnChange fan-out.
func (m *Model) checkHealthCmd() tea.Cmd {
	return func() tea.Msg {
		m.monitor.CheckHealth(context.Background())
		return nil
	}
}

// saveSettingsCmd validates and persists the server URL, then points
// the client at it and re-probes.
func (m *Model) saveSettingsCmd(raw string) tea.Cmd {
	return func() tea.Msg {
		s := &config.Settings{ServerURL: strings.TrimSpace(raw)}
		if err := config.Save(s); err != nil {
			return SettingsSavedMsg{ServerURL: raw, Err: err}
		}
		m.client.SetBaseURL(s.ServerURL)
		m.monitor.CheckHealth(context.Background())
		return SettingsSavedMsg{ServerURL: s.ServerURL}
	}
}

func blinkTick() tea.Cmd {
	return tea.Tick(blinkInterval, func(t time.Time) tea.Msg {
		return BlinkMsg(t)
	})
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// header (1) + input border (1) + input (1) + footer (1)
	viewportHeight := height - 4
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = width - 4
	m.settingsInput.Width = width - 4
}

// refreshTranscript re-renders the transcript into the viewport and
// follows the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
