// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
)

// =============================================================================
// CONNECTIVITY STATUS
// =============================================================================

// Status is the current connectivity assessment shown to the user.
type Status string

const (
	// StatusChecking means a health probe is in flight and no verdict
	// exists yet. Submissions are rejected while checking.
	StatusChecking Status = "checking"

	// StatusConnected means the last probe reported a healthy server.
	StatusConnected Status = "connected"

	// StatusDegraded means the server answered the probe but reported
	// reduced capability. Queries still work.
	StatusDegraded Status = "degraded"

	// StatusDisconnected means the last probe failed or the fallback
	// call failed.
	StatusDisconnected Status = "disconnected"

	// StatusStreaming means an answer is currently arriving.
	StatusStreaming Status = "streaming"

	// StatusLoading means the streaming channel was unusable and the
	// single-shot fallback call is in flight.
	StatusLoading Status = "loading"

	// StatusError means the server signaled a failure for the last
	// question.
	StatusError Status = "error"

	// StatusReconnecting means the streaming channel dropped and a
	// re-check is pending.
	StatusReconnecting Status = "reconnecting"
)

// Usable reports whether questions may be submitted in this status.
func (s Status) Usable() bool {
	switch s {
	case StatusConnected, StatusDegraded, StatusStreaming, StatusLoading, StatusError, StatusReconnecting:
		return true
	}
	return false
}

// Label returns the user-facing status text.
func (s Status) Label() string {
	switch s {
	case StatusChecking:
		return "Connecting..."
	case StatusConnected:
		return "MCP Connected"
	case StatusDegraded:
		return "MCP Degraded"
	case StatusDisconnected:
		return "Disconnected"
	case StatusStreaming:
		return "Streaming..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	case StatusReconnecting:
		return "Reconnecting..."
	default:
		return string(s)
	}
}

// =============================================================================
// CONNECTION MONITOR
// =============================================================================

// HealthChecker probes the server once. Satisfied by *assistant.Client.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*assistant.HealthInfo, error)
}

// Monitor tracks server connectivity for the whole session. It owns the
// status value: health probes and the session controller both funnel
// status changes through it, and a single onChange callback fans the
// result out to whatever surface is attached.
//
// All methods are safe for concurrent use.
type Monitor struct {
	checker      HealthChecker
	limiter      *rate.Limiter
	recheckDelay time.Duration

	mu       sync.Mutex
	status   Status
	info     *assistant.HealthInfo
	timer    *time.Timer
	closed   bool
	onChange func(Status, *assistant.HealthInfo)

	logf func(format string, args ...any)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRecheckDelay overrides the delay before the automatic re-check
// after a dropped stream (default: 3s).
func WithRecheckDelay(d time.Duration) Option {
	return func(m *Monitor) { m.recheckDelay = d }
}

// WithLogf installs a logger for swallowed probe errors.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(m *Monitor) {
		if logf != nil {
			m.logf = logf
		}
	}
}

// New creates a connection monitor in the "checking" state.
func New(checker HealthChecker, opts ...Option) *Monitor {
	m := &Monitor{
		checker:      checker,
		status:       StatusChecking,
		recheckDelay: 3 * time.Second,
		// Generous cap: probes are manual or event-driven, never a poll
		// loop, but a stuck caller must not hammer the server.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers the callback invoked after every status transition.
// The callback runs outside the monitor's lock and may call back into
// the monitor.
func (m *Monitor) OnChange(fn func(Status, *assistant.HealthInfo)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Status returns the current connectivity status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Info returns the most recent health payload, or nil when the last
// probe failed or none has completed.
func (m *Monitor) Info() *assistant.HealthInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// CheckHealth runs one probe and returns the resulting status. Probe
// failures are absorbed into the status; this never returns an error.
// Rate-limited: excess calls return the current status untouched.
func (m *Monitor) CheckHealth(ctx context.Context) Status {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed || !m.limiter.Allow() {
		return m.Status()
	}

	m.transition(StatusChecking, nil)

	info, err := m.checker.CheckHealth(ctx)
	if err != nil {
		m.logf("health check failed: %v", err)
		m.transition(StatusDisconnected, nil)
		return StatusDisconnected
	}

	next := StatusDisconnected
	switch info.Status {
	case "healthy":
		next = StatusConnected
	case "degraded":
		next = StatusDegraded
	}
	m.transition(next, info)
	return next
}

// SetStatus records a transport-phase transition (streaming, loading,
// reconnecting, error, disconnected) reported by the session controller.
func (m *Monitor) SetStatus(s Status) {
	m.mu.Lock()
	info := m.info
	m.mu.Unlock()
	m.transition(s, info)
}

// ScheduleRecheck arranges one health probe after the recheck delay.
// A newer schedule replaces a pending one.
func (m *Monitor) ScheduleRecheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.recheckDelay, func() {
		m.CheckHealth(context.Background())
	})
}

// Close cancels any pending re-check. The monitor must not be used
// afterwards.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) transition(s Status, info *assistant.HealthInfo) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	changed := m.status != s || m.info != info
	m.status = s
	m.info = info
	fn := m.onChange
	m.mu.Unlock()

	if changed && fn != nil {
		fn(s, info)
	}
}
