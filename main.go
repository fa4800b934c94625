// MCP Assistant TUI - a terminal chat client for MCP assistant servers.
//
// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/cli"
	"github.com/kamalbisht/mcp-assistant-tui/internal/config"
	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
	"github.com/kamalbisht/mcp-assistant-tui/internal/session"
	"github.com/kamalbisht/mcp-assistant-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		serverURL = flag.String("server", "", "MCP server URL (overrides settings)")
		plain     = flag.Bool("plain", false, "line-mode interface instead of the TUI")
		debug     = flag.Bool("debug", false, "log swallowed errors to stderr")
		version   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("mcp-assistant-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	logf := func(string, ...any) {}
	if *debug {
		logger := log.New(os.Stderr, "mcp-assistant: ", log.LstdFlags)
		logf = logger.Printf
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		settings.ServerURL = *serverURL
		if err := settings.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	client := assistant.NewClientWithConfig(&assistant.ClientConfig{
		BaseURL: settings.ServerURL,
	})
	client.SetLogf(logf)

	mon := monitor.New(client, monitor.WithLogf(logf))
	defer mon.Close()

	// Settings edited on disk take effect immediately.
	if path, err := config.Path(); err == nil {
		if w, werr := config.NewWatcher(path, func(s *config.Settings) {
			client.SetBaseURL(s.ServerURL)
			mon.CheckHealth(context.Background())
		}, logf); werr == nil {
			if werr := w.Watch(); werr == nil {
				defer w.Close()
			}
		}
	}

	if *plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		runREPL(client, mon, logf)
		return
	}
	runTUI(client, mon, logf)
}

func runTUI(client *assistant.Client, mon *monitor.Monitor, logf func(string, ...any)) {
	surface := chat.NewSurface()
	mon.OnChange(surface.StatusChanged)

	store := model.NewStore(surface)
	store.SetLogf(logf)

	controller := session.NewController(store, mon, client)
	controller.SetLogf(logf)

	m := chat.New(controller, store, mon, client)
	program := tea.NewProgram(m, tea.WithAltScreen())
	surface.Attach(program)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(client *assistant.Client, mon *monitor.Monitor, logf func(string, ...any)) {
	store := model.NewStore(cli.NewReplSurface())
	store.SetLogf(logf)

	controller := session.NewController(store, mon, client)
	controller.SetLogf(logf)

	if err := cli.Chat(controller, store, mon, client); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
