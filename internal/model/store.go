// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"sync"
)

// MaxMessages is the maximum number of turns kept in the transcript.
// When exceeded, the oldest turns are pruned to prevent unbounded
// memory growth.
const MaxMessages = 1000

// ErrPendingTurn is returned when an assistant turn is appended while
// another assistant turn is still streaming.
var ErrPendingTurn = errors.New("an assistant turn is already pending")

// =============================================================================
// SURFACE
// =============================================================================

// Surface receives transcript change notifications. Implemented by the
// TUI; NopSurface serves headless use and tests.
//
// Calls arrive from whatever goroutine mutated the store, so
// implementations must be safe for concurrent use. Messages are handed
// over by value: the surface owns its copy and never observes later
// store mutations.
type Surface interface {
	AppendMessage(msg Message)
	UpdateMessage(msg Message)
	ResetMessages()
	ScrollToBottom()
}

// NopSurface is a Surface that ignores every notification.
type NopSurface struct{}

func (NopSurface) AppendMessage(Message) {}
func (NopSurface) UpdateMessage(Message) {}
func (NopSurface) ResetMessages()        {}
func (NopSurface) ScrollToBottom()       {}

// =============================================================================
// MESSAGE STORE
// =============================================================================

// Store holds the session transcript and notifies the attached surface
// of every change. At most one assistant turn is pending at a time;
// updates address turns by ID so a late update for a cleared or
// completed turn falls through harmlessly.
//
// All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	messages  []*Message
	pendingID string
	surface   Surface

	logf func(format string, args ...any)
}

// NewStore creates an empty message store notifying the given surface.
// A nil surface gets replaced with NopSurface.
func NewStore(surface Surface) *Store {
	if surface == nil {
		surface = NopSurface{}
	}
	return &Store{
		surface: surface,
		logf:    func(string, ...any) {},
	}
}

// SetLogf installs a logger for dropped updates.
func (s *Store) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		s.logf = logf
	}
}

// SetSurface swaps the notification target. Useful when the UI is
// constructed after the store.
func (s *Store) SetSurface(surface Surface) {
	if surface == nil {
		surface = NopSurface{}
	}
	s.mu.Lock()
	s.surface = surface
	s.mu.Unlock()
}

// AppendUser appends a completed user turn and returns its ID.
func (s *Store) AppendUser(content string) string {
	msg := NewMessage(RoleUser, content)
	msg.terminal = true

	s.mu.Lock()
	s.append(msg)
	snap := *msg
	surface := s.surface
	s.mu.Unlock()

	surface.AppendMessage(snap)
	surface.ScrollToBottom()
	return snap.ID
}

// AppendPending appends an empty assistant turn in the streaming state
// and returns its ID. Fails when another assistant turn is still
// pending; single-flight submission should make that impossible.
func (s *Store) AppendPending() (string, error) {
	msg := NewMessage(RoleAssistant, "")
	msg.Streaming = true

	s.mu.Lock()
	if s.pendingID != "" {
		s.mu.Unlock()
		return "", ErrPendingTurn
	}
	s.append(msg)
	s.pendingID = msg.ID
	snap := *msg
	surface := s.surface
	s.mu.Unlock()

	surface.AppendMessage(snap)
	surface.ScrollToBottom()
	return snap.ID, nil
}

// Update replaces the content of the turn with the given ID. The content
// replaces what was there; it is never appended. streaming=false
// completes the turn, after which further updates are dropped. Updates
// for unknown IDs (cleared transcript, stale callbacks) are dropped too.
func (s *Store) Update(id, content string, streaming bool, chart string) {
	s.mu.Lock()

	msg := s.find(id)
	if msg == nil {
		s.mu.Unlock()
		s.logf("dropping update for unknown message %s", id)
		return
	}
	if msg.terminal {
		s.mu.Unlock()
		s.logf("dropping update for completed message %s", id)
		return
	}

	msg.Content = content
	msg.Streaming = streaming
	if chart != "" {
		msg.Chart = chart
	}
	if !streaming {
		msg.terminal = true
		if s.pendingID == id {
			s.pendingID = ""
		}
	}
	// Copy while still holding the lock: the surface may run on another
	// goroutine than the next Update call.
	snap := *msg
	surface := s.surface
	s.mu.Unlock()

	surface.UpdateMessage(snap)
	surface.ScrollToBottom()
}

// Clear empties the transcript. Safe mid-stream: the pending turn's ID
// is forgotten, so its late updates are dropped rather than resurrected.
func (s *Store) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.pendingID = ""
	surface := s.surface
	s.mu.Unlock()

	surface.ResetMessages()
}

// Messages returns a snapshot of the transcript. The returned values
// are copies; callers may read them from any goroutine while streaming
// updates keep mutating the store.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

// Pending returns the ID of the streaming assistant turn, or "".
func (s *Store) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID
}

// Len returns the number of turns in the transcript.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// append adds a message and prunes the oldest beyond MaxMessages.
// Caller holds s.mu.
func (s *Store) append(msg *Message) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > MaxMessages {
		s.messages = s.messages[len(s.messages)-MaxMessages:]
	}
}

// find returns the message with the given ID. Caller holds s.mu.
func (s *Store) find(id string) *Message {
	// Updates almost always target the newest turn; scan backwards.
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return s.messages[i]
		}
	}
	return nil
}
