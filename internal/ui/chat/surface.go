// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamalbisht/mcp-assistant-tui/internal/assistant"
	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
	"github.com/kamalbisht/mcp-assistant-tui/internal/monitor"
)

// Surface bridges store and monitor notifications into Bubble Tea
// messages. It is constructed before the tea.Program exists, so sends
// are dropped until Attach provides the program.
type Surface struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewSurface creates an unattached surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach connects the surface to the running program.
func (s *Surface) Attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// AppendMessage implements model.Surface.
func (s *Surface) AppendMessage(model.Message) { s.send(TranscriptMsg{}) }

// UpdateMessage implements model.Surface.
func (s *Surface) UpdateMessage(model.Message) { s.send(TranscriptMsg{}) }

// ResetMessages implements model.Surface.
func (s *Surface) ResetMessages() { s.send(TranscriptClearedMsg{}) }

// ScrollToBottom implements model.Surface. Scrolling happens when the
// transcript re-renders; no separate message needed.
func (s *Surface) ScrollToBottom() {}

// StatusChanged forwards a monitor transition into the program. Wire it
// as the monitor's OnChange callback.
func (s *Surface) StatusChanged(status monitor.Status, info *assistant.HealthInfo) {
	s.send(StatusMsg{Status: status, Info: info})
}
