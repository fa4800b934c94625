// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// chat.go - Interactive REPL for terminals without full TUI support.
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear the transcript
//   /status, /s         Show connection status
//   /server [url]       Show or change the server URL
//   /test, /t           Re-check the server connection
//   /quit, /q           Exit
//   Ctrl+D              Exit
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/config"
	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
	"github.com/kamalbisht/mcp-assistant-tui/internal/render"
	"github.com/kamalbisht/mcp-assistant-tui/internal/session"
	"github.com/kamalbisht/mcp-assistant-tui/internal/ui/styles"
	"github.com/kamalbisht/mcp-assistant-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history at
// ~/.mcp-assistant/chat_history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *ChatCLI) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// TRANSCRIPT OUTPUT
// =============================================================================

// replSurface prints assistant content as it streams. Content arrives
// as full snapshots; the printed prefix is tracked so only the delta
// hits the terminal. Server text is sanitized before printing so it
// cannot smuggle control sequences onto the terminal.
type replSurface struct {
	mu      sync.Mutex
	out     io.Writer
	printed string
}

func (s *replSurface) AppendMessage(msg model.Message) {
	if msg.Role != model.RoleAssistant {
		return
	}
	s.mu.Lock()
	s.printed = ""
	s.mu.Unlock()
}

func (s *replSurface) UpdateMessage(msg model.Message) {
	if msg.Role != model.RoleAssistant {
		return
	}
	content := render.Sanitize(msg.Content)

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasPrefix(content, s.printed) {
		fmt.Fprint(s.out, content[len(s.printed):])
	} else {
		// Replacement text (fallback answer, warning): start over.
		if s.printed != "" {
			fmt.Fprintln(s.out)
		}
		fmt.Fprint(s.out, content)
	}
	s.printed = content

	if !msg.Streaming {
		if msg.Chart != "" {
			fmt.Fprint(s.out, "\n"+infoStyle.Render("[chart attached]"))
		}
		fmt.Fprintln(s.out)
	}
}

func (s *replSurface) ResetMessages()  {}
func (s *replSurface) ScrollToBottom() {}

// =============================================================================
// REPL
// =============================================================================

// Chat runs the interactive REPL until the user exits. The store must
// have been created with NewReplSurface as its surface.
func Chat(controller *session.Controller, store *model.Store, mon *monitor.Monitor, client *assistant.Client) error {
	input := NewChatCLI()
	defer input.Close()

	fmt.Println(welcomeStyle.Render("MCP Assistant"))
	fmt.Println(infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()

	mon.CheckHealth(context.Background())
	printStatus(mon)

	for {
		line, err := input.ReadInput(promptStyle.Render("> "))
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(line, controller, mon, client); quit {
				return nil
			}
			continue
		}

		controller.Submit(context.Background(), line)
	}
}

// NewReplSurface returns the surface the REPL expects its store to use.
func NewReplSurface() model.Surface {
	return &replSurface{out: os.Stdout}
}

func handleCommand(line string, controller *session.Controller, mon *monitor.Monitor, client *assistant.Client) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		printHelp()

	case "/clear", "/c":
		controller.ClearSession()
		fmt.Println(infoStyle.Render("Transcript cleared."))

	case "/status", "/s":
		printStatus(mon)

	case "/test", "/t":
		fmt.Println(infoStyle.Render("Checking..."))
		mon.CheckHealth(context.Background())
		printStatus(mon)

	case "/server":
		if len(fields) < 2 {
			fmt.Println(infoStyle.Render("Server: " + client.BaseURL()))
			break
		}
		s := &config.Settings{ServerURL: fields[1]}
		if err := config.Save(s); err != nil {
			fmt.Println(warningStyle.Render("Cannot save server URL: " + err.Error()))
			break
		}
		client.SetBaseURL(s.ServerURL)
		mon.CheckHealth(context.Background())
		printStatus(mon)

	default:
		fmt.Println(warningStyle.Render("Unknown command " + cmd + "; try /help"))
	}
	return false
}

func printStatus(mon *monitor.Monitor) {
	status := mon.Status()
	line := "Status: " + status.Label()
	if info := mon.Info(); info != nil {
		if info.LLMAvailable != nil && !*info.LLMAvailable {
			line += " (LLM unavailable)"
		}
		if info.SSEEnabled != nil && !*info.SSEEnabled {
			line += " (streaming disabled)"
		}
	}
	if status.Usable() {
		fmt.Println(commandStyle.Render(line))
	} else {
		fmt.Println(warningStyle.Render(line))
	}
}

func printHelp() {
	help := []struct{ cmd, desc string }{
		{"/help, /h", "show this help"},
		{"/clear, /c", "clear the transcript"},
		{"/status, /s", "show connection status"},
		{"/server [url]", "show or change the server URL"},
		{"/test, /t", "re-check the server connection"},
		{"/quit, /q", "exit"},
	}
	for _, h := range help {
		fmt.Printf("  %s  %s\n", commandStyle.Render(util.PadWidth(h.cmd, 14)), infoStyle.Render(h.desc))
	}
}
