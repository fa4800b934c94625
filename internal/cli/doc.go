// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the line-mode chat interface.
//
// It drives the same session controller as the TUI but prints streamed
// answers straight to stdout, with liner-based input history. Used when
// stdout is not a terminal or the user passes -plain.
package cli
