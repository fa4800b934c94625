// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kamalbisht/mcp-assistant-tui/internal/util"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the assistant client.
type ClientConfig struct {
	// BaseURL is the MCP server base address (default: http://localhost:3001)
	BaseURL string

	// Timeout for the health check and the fallback call (default: 15s).
	// The streaming channel carries no timeout; failure is detected via
	// the transport's own error signal.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://localhost:3001",
		Timeout: 15 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the MCP assistant server. It covers the
// three server endpoints (GET /health, GET /stream, POST /query) and runs
// the question/answer state machine in Send.
//
// The Client is safe for concurrent use. The base URL is mutable; in-flight
// calls keep the address they started with, the next call reads the new one.
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client

	mu      sync.RWMutex
	baseURL string

	logf  func(format string, args ...any)
	phase func(State)
}

// NewClient creates a new assistant client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new assistant client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:3001"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// Streaming responses outlive any sane request timeout, so the
		// channel uses a dedicated client and relies on context/transport
		// errors instead.
		streamClient: &http.Client{},
		logf:         func(string, ...any) {},
		phase:        func(State) {},
	}
}

// SetLogf installs a logger for swallowed errors (malformed frames,
// failed probes). Swallowing stays; this makes it observable.
func (c *Client) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		c.logf = logf
	}
}

// SetPhaseHook installs a callback invoked when Send enters the
// fallback phase, before the single-shot call leaves. Install during
// wiring, before any Send runs.
func (c *Client) SetPhaseHook(fn func(State)) {
	if fn != nil {
		c.phase = fn
	}
}

// BaseURL returns the current server base address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL updates the server base address for subsequent calls.
func (c *Client) SetBaseURL(base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(base, "/")
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckHealth issues one GET /health probe and returns the server's health
// payload. Any network failure, non-2xx status or malformed body comes back
// as an error; the connection monitor maps those to "disconnected". No
// retries happen here — callers decide when to probe again.
func (c *Client) CheckHealth(ctx context.Context) (*HealthInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/health", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from health check: " + resp.Status,
		}
	}

	var info HealthInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode health response", Cause: err}
	}

	return &info, nil
}

// =============================================================================
// FALLBACK QUERY
// =============================================================================

// Query issues the single-shot POST /query call with the question as a
// JSON body. Used as the fallback when the streaming channel cannot be
// used; also usable directly by non-streaming frontends.
func (c *Client) Query(ctx context.Context, question string) (*QueryResponse, error) {
	body, err := json.Marshal(QueryRequest{Question: question})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "query request failed: " + resp.Status,
		}
	}

	var result QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode query response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

// Send runs one complete question/answer cycle:
//
//	IDLE → STREAM_OPENING → STREAM_ACTIVE → STREAM_DONE
//	                      ↘ STREAM_ERRORED                (server-signaled)
//	channel failure, no content   → FALLBACK_REQUEST → FALLBACK_DONE/FAILED
//	channel failure, partial text → terminal with the partial text
//
// onUpdate is invoked with the full accumulated text after every token and
// exactly once with streaming=false at the terminal state. Every exit path
// produces exactly one terminal update; no error escapes as a panic or a
// bare error return. Single-flight is the caller's responsibility.
func (c *Client) Send(ctx context.Context, question string, onUpdate UpdateFunc) Outcome {
	// STREAM_OPENING
	body, err := c.openStream(ctx, question)
	if err != nil {
		// The channel never opened and nothing accumulated: fall back.
		c.logf("stream open failed, falling back: %v", err)
		out := c.fallback(ctx, question, onUpdate)
		out.TransportFailed = true
		return out
	}
	defer body.Close()

	// STREAM_ACTIVE
	reader := NewSSEReader(body)
	var acc strings.Builder
	var chart string
	var fullResponse string

	for {
		select {
		case <-ctx.Done():
			return c.transportFailure(ctx, question, acc.String(), chart, ctx.Err(), onUpdate)
		default:
		}

		data, rerr := reader.ReadEvent()
		if rerr != nil {
			// Connection drop or EOF before a terminal frame.
			return c.transportFailure(ctx, question, acc.String(), chart, rerr, onUpdate)
		}

		var ev StreamEvent
		if uerr := json.Unmarshal(data, &ev); uerr != nil {
			// One bad frame must not abort an otherwise healthy stream.
			c.logf("dropping malformed stream frame %q: %v", util.TruncateRunes(string(data), 64), uerr)
			continue
		}

		// Fields are independent; evaluate all of them, done before error.
		if ev.Token != "" {
			acc.WriteString(ev.Token)
			onUpdate(acc.String(), true, "")
		}
		if ev.Chart != "" {
			chart = ev.Chart
		}
		if ev.FullResponse != "" {
			fullResponse = ev.FullResponse
		}
		if ev.Done {
			content := acc.String()
			if content == "" {
				content = fullResponse
			}
			if content == "" {
				content = NoResponseText
			}
			onUpdate(content, false, chart)
			return Outcome{State: StateStreamDone, Content: content, Chart: chart}
		}
		if ev.Error != "" {
			// Server-signaled failure: surface verbatim, no fallback.
			content := "❌ " + ev.Error
			onUpdate(content, false, "")
			return Outcome{
				State:   StateStreamErrored,
				Content: content,
				Err:     &ClientError{Type: ErrTypeServer, Message: ev.Error},
			}
		}
	}
}

// transportFailure handles a channel-level failure: keep partial content if
// any arrived, otherwise fall back to the single-shot call.
func (c *Client) transportFailure(ctx context.Context, question, partial, chart string, cause error, onUpdate UpdateFunc) Outcome {
	if partial != "" {
		// Partial progress beats a fallback answer.
		c.logf("stream failed with partial content (%d bytes): %v", len(partial), cause)
		onUpdate(partial, false, chart)
		return Outcome{
			State:           StateStreamDone,
			Content:         partial,
			Chart:           chart,
			TransportFailed: true,
			Err:             &ClientError{Type: ErrTypeStreamClosed, Message: "stream interrupted", Cause: cause},
		}
	}

	c.logf("stream failed before any content, falling back: %v", cause)
	out := c.fallback(ctx, question, onUpdate)
	out.TransportFailed = true
	return out
}

// fallback is the FALLBACK_REQUEST state: one POST /query attempt.
func (c *Client) fallback(ctx context.Context, question string, onUpdate UpdateFunc) Outcome {
	c.phase(StateFallbackRequest)

	resp, err := c.Query(ctx, question)
	if err != nil {
		onUpdate(FallbackFailedText, false, "")
		return Outcome{State: StateFallbackFailed, Content: FallbackFailedText, Err: err}
	}

	content := resp.Text()
	onUpdate(content, false, resp.Chart)
	return Outcome{State: StateFallbackDone, Content: content, Chart: resp.Chart}
}

// openStream starts the GET /stream request for the question and returns
// the response body for SSE consumption.
func (c *Client) openStream(ctx context.Context, question string) (io.ReadCloser, error) {
	u := c.BaseURL() + "/stream?question=" + url.QueryEscape(question)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "stream request failed: " + resp.Status,
		}
	}

	return resp.Body, nil
}
