// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat
// interface. All message types follow Bubble Tea conventions and are
// immutable.
package chat

import (
	"time"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
)

// =============================================================================
// TRANSCRIPT MESSAGES
// =============================================================================

// TranscriptMsg signals that the transcript changed and the viewport
// needs re-rendering. Content is read from the store, never carried in
// the message.
type TranscriptMsg struct{}

// TranscriptClearedMsg signals that the transcript was emptied.
type TranscriptClearedMsg struct{}

// =============================================================================
// CONNECTIVITY MESSAGES
// =============================================================================

// StatusMsg delivers a connectivity status change from the monitor.
type StatusMsg struct {
	Status monitor.Status
	Info   *assistant.HealthInfo
}

// =============================================================================
// SUBMISSION MESSAGES
// =============================================================================

// SubmitResultMsg reports whether a submission was accepted and, once
// accepted, that its exchange has settled.
type SubmitResultMsg struct {
	Question string
	Accepted bool
}

// =============================================================================
// SETTINGS MESSAGES
// =============================================================================

// SettingsSavedMsg reports the result of saving the server URL from
// the settings view.
type SettingsSavedMsg struct {
	ServerURL string
	Err       error
}

// =============================================================================
// ANIMATION MESSAGES
// =============================================================================

// BlinkMsg drives the streaming cursor blink.
type BlinkMsg time.Time
