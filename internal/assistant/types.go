// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package assistant

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assistant client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeStreamClosed
	ErrTypeServer
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeUnreachable, Message: "MCP server is unreachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrStreamClosed = &ClientError{Type: ErrTypeStreamClosed, Message: "stream closed before completion"}
)

// IsUnreachable reports whether err indicates the server could not be
// reached at the transport level.
func IsUnreachable(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeUnreachable
}

// IsTimeout reports whether err indicates a request deadline was hit.
func IsTimeout(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// HealthInfo is the payload returned by GET /health.
// Status is the server's own judgement; the optional fields describe
// capabilities and are surfaced in the settings view.
type HealthInfo struct {
	Status       string `json:"status"`
	LLMAvailable *bool  `json:"llm_available,omitempty"`
	SSEEnabled   *bool  `json:"sse_enabled,omitempty"`
}

// Usable reports whether the server considers itself able to answer
// questions. A degraded server still counts as usable.
func (h *HealthInfo) Usable() bool {
	if h == nil {
		return false
	}
	return h.Status == "healthy" || h.Status == "degraded"
}

// StreamEvent is a single frame from the GET /stream SSE channel.
// Fields are independent: one frame may carry any combination of them.
type StreamEvent struct {
	Token        string `json:"token,omitempty"`
	Chart        string `json:"chart,omitempty"`
	Done         bool   `json:"done,omitempty"`
	Error        string `json:"error,omitempty"`
	FullResponse string `json:"full_response,omitempty"`
}

// QueryRequest is the body for the POST /query fallback call.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the body returned by POST /query. Servers answer in
// either the "answer" or the "response" field; "answer" wins when both
// are present.
type QueryResponse struct {
	Answer   string `json:"answer,omitempty"`
	Response string `json:"response,omitempty"`
	Chart    string `json:"chart,omitempty"`
}

// Text returns the answer text, preferring "answer" over "response",
// with the fixed default when the server supplied neither.
func (r *QueryResponse) Text() string {
	if r.Answer != "" {
		return r.Answer
	}
	if r.Response != "" {
		return r.Response
	}
	return NoResponseText
}

// =============================================================================
// TERMINAL TEXT LITERALS
// =============================================================================

const (
	// NoResponseText stands in for an empty answer on any terminal path.
	NoResponseText = "No response"

	// FallbackFailedText is the terminal content when the fallback call
	// itself fails.
	FallbackFailedText = "❌ Failed to connect to server"
)

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

// State identifies a phase of the question/answer transport state machine.
type State int

const (
	StateIdle State = iota
	StateStreamOpening
	StateStreamActive
	StateStreamDone
	StateStreamErrored
	StateFallbackRequest
	StateFallbackDone
	StateFallbackFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreamOpening:
		return "stream-opening"
	case StateStreamActive:
		return "stream-active"
	case StateStreamDone:
		return "stream-done"
	case StateStreamErrored:
		return "stream-errored"
	case StateFallbackRequest:
		return "fallback-request"
	case StateFallbackDone:
		return "fallback-done"
	case StateFallbackFailed:
		return "fallback-failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a question/answer cycle.
func (s State) Terminal() bool {
	switch s {
	case StateStreamDone, StateStreamErrored, StateFallbackDone, StateFallbackFailed:
		return true
	}
	return false
}

// UpdateFunc receives incremental and terminal content updates for the
// pending assistant turn. Content is always the full accumulated text,
// never a delta. Streaming is false exactly once, on the terminal update.
// Chart is empty until a chart payload is known.
type UpdateFunc func(content string, streaming bool, chart string)

// Outcome describes how a Send call terminated. Every Send returns exactly
// one Outcome with a terminal State; transport errors never propagate as
// plain error returns.
type Outcome struct {
	State   State
	Content string
	Chart   string

	// TransportFailed is true when the streaming channel failed before a
	// terminal frame (connection drop, premature EOF). The caller should
	// enter the reconnecting phase and schedule a health re-check.
	TransportFailed bool

	// Err carries the underlying transport error for logging. It is
	// diagnostic only; State carries the control flow.
	Err error
}
