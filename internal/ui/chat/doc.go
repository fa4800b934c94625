// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package chat provides the chat view component for the TUI.
//
// The Model renders the transcript, the connectivity badge, the input
// line and the settings view. It never talks to the server directly:
// submissions go through the session controller, and content comes back
// asynchronously as Bubble Tea messages posted by the Surface.
//
// # Key Types
//
//   - Model: the Bubble Tea model for the whole screen
//   - Surface: bridges store/monitor callbacks into program messages
//   - KeyMap: keyboard bindings
//
// # Message Flow
//
// Submitting a question dispatches a command that blocks on the
// controller. While it runs, the store's surface notifications arrive
// as TranscriptMsg and re-render the viewport, and monitor transitions
// arrive as StatusMsg. Charts render inline via the Kitty or iTerm2
// graphics protocols when the terminal supports them.
package chat
