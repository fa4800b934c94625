// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"strings"
	"sync"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
)

// NotConnectedText is shown in place of an answer when a question is
// submitted without a usable server connection.
const NotConnectedText = "⚠️ Not connected to MCP server. Please check settings."

// Transport runs one question/answer cycle. Satisfied by
// *assistant.Client.
type Transport interface {
	Send(ctx context.Context, question string, onUpdate assistant.UpdateFunc) assistant.Outcome
}

// PhaseReporter is implemented by transports that announce phase
// changes mid-cycle, such as dropping to the fallback call.
type PhaseReporter interface {
	SetPhaseHook(func(assistant.State))
}

// =============================================================================
// SESSION CONTROLLER
// =============================================================================

// Controller coordinates one chat session: it enforces single-flight
// submission, writes both turns of each exchange into the store, runs
// the transport cycle, and translates the outcome into a connectivity
// status.
type Controller struct {
	store     *model.Store
	monitor   *monitor.Monitor
	transport Transport

	mu       sync.Mutex
	inFlight bool

	logf func(format string, args ...any)
}

// NewController wires a controller from its three collaborators.
func NewController(store *model.Store, mon *monitor.Monitor, transport Transport) *Controller {
	c := &Controller{
		store:     store,
		monitor:   mon,
		transport: transport,
		logf:      func(string, ...any) {},
	}
	if pr, ok := transport.(PhaseReporter); ok {
		pr.SetPhaseHook(c.handlePhase)
	}
	return c
}

// handlePhase surfaces mid-cycle transport phases as status changes.
// The fallback call shows "Loading..." until the outcome settles.
func (c *Controller) handlePhase(s assistant.State) {
	if s == assistant.StateFallbackRequest {
		c.monitor.SetStatus(monitor.StatusLoading)
	}
}

// SetLogf installs a logger for rejected submissions and transport
// diagnostics.
func (c *Controller) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		c.logf = logf
	}
}

// InFlight reports whether a question is currently being answered.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Submit runs one complete exchange for the question and returns true
// if it was accepted. Rejections (blank input, a question already in
// flight) return false without touching the transcript.
//
// Submit blocks until the exchange reaches a terminal state; callers
// that need a responsive UI run it on its own goroutine. Incremental
// content reaches the UI through the store's surface notifications.
func (c *Controller) Submit(ctx context.Context, question string) bool {
	question = strings.TrimSpace(question)
	if question == "" {
		return false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logf("submission rejected: question already in flight")
		return false
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	c.store.AppendUser(question)
	asstID, err := c.store.AppendPending()
	if err != nil {
		// Unreachable under single-flight; keep the transcript sane.
		c.logf("pending turn conflict: %v", err)
		return false
	}

	// No usable connection: answer with the warning instead of burning
	// a doomed request.
	if !c.monitor.Status().Usable() {
		c.store.Update(asstID, NotConnectedText, false, "")
		return true
	}

	c.monitor.SetStatus(monitor.StatusStreaming)

	outcome := c.transport.Send(ctx, question, func(content string, streaming bool, chart string) {
		c.store.Update(asstID, content, streaming, chart)
	})

	c.settle(outcome)
	return true
}

// settle maps a terminal transport outcome onto the connectivity status.
func (c *Controller) settle(outcome assistant.Outcome) {
	if outcome.Err != nil {
		c.logf("exchange finished in %s: %v", outcome.State, outcome.Err)
	}

	if outcome.TransportFailed {
		// The stream died under us; re-check shortly regardless of how
		// the answer was salvaged.
		defer c.monitor.ScheduleRecheck()
	}

	switch outcome.State {
	case assistant.StateStreamDone:
		if outcome.TransportFailed {
			c.monitor.SetStatus(monitor.StatusReconnecting)
		} else {
			c.monitor.SetStatus(monitor.StatusConnected)
		}
	case assistant.StateStreamErrored:
		c.monitor.SetStatus(monitor.StatusError)
	case assistant.StateFallbackDone:
		// The single-shot call worked, so the server is reachable even
		// though the stream was not.
		c.monitor.SetStatus(monitor.StatusConnected)
	case assistant.StateFallbackFailed:
		c.monitor.SetStatus(monitor.StatusDisconnected)
	}
}

// ClearSession empties the transcript. An in-flight exchange keeps
// running; its late updates die against the cleared store.
func (c *Controller) ClearSession() {
	c.store.Clear()
}
