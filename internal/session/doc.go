// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package session coordinates a chat session end to end.
//
// The Controller sits between the UI and the transport: it accepts one
// question at a time, appends the user turn and the pending assistant
// turn to the store, runs the transport's question/answer cycle, and
// maps the terminal outcome onto the connection monitor's status. The
// UI never talks to the transport directly.
//
// Submission discipline:
//
//   - blank questions and questions submitted mid-flight are rejected
//   - without a usable connection the assistant turn completes
//     immediately with a "not connected" warning
//   - clearing the session mid-stream is safe; the running exchange
//     finishes against the cleared store and its updates are dropped
package session
