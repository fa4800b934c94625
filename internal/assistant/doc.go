// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package assistant provides the HTTP client for communicating with an MCP
// assistant server.
//
// This package implements the transport layer for the assistant: a
// server-sent-events streaming channel with a single-shot HTTP fallback,
// plus the health probe used by the connection monitor.
//
// # Key Types
//
//   - Client: HTTP client covering /health, /stream and /query
//   - StreamEvent: One decoded SSE frame (token, chart, done, error)
//   - Outcome: Terminal result of a Send cycle with its final state
//   - HealthInfo: Decoded /health payload with capability flags
//   - SSEReader: Frame reader for text/event-stream bodies
//
// # Usage
//
// Create a client and run one question/answer cycle:
//
//	client := assistant.NewClient()
//	outcome := client.Send(ctx, "What is my total cost?",
//	    func(content string, streaming bool, chart string) {
//	        render(content, streaming)
//	    })
//	if outcome.State == assistant.StateFallbackFailed {
//	    // server unreachable on both channels
//	}
//
// Send never returns a bare error: every exit path, including connection
// drops and server-signaled failures, produces exactly one terminal
// onUpdate call and an Outcome describing which path was taken. When the
// stream dies after partial tokens arrived, the partial text is kept and
// the fallback is skipped.
//
// # Health Checks
//
// CheckHealth issues a single GET /health probe. A "degraded" status is a
// usable state (queries still work); only transport failures and
// malformed replies come back as errors.
package assistant
