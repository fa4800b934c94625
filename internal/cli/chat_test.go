// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kamalbisht/mcp-assistant-tui/internal/model"
)

func newTestSurface() (*replSurface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &replSurface{out: buf}, buf
}

func assistantTurn(content string, streaming bool, chart string) model.Message {
	return model.Message{
		ID:        "msg-test",
		Role:      model.RoleAssistant,
		Content:   content,
		Streaming: streaming,
		Chart:     chart,
	}
}

func TestReplSurfacePrintsDeltas(t *testing.T) {
	s, buf := newTestSurface()

	s.AppendMessage(assistantTurn("", true, ""))
	s.UpdateMessage(assistantTurn("$4", true, ""))
	s.UpdateMessage(assistantTurn("$42", true, ""))
	s.UpdateMessage(assistantTurn("$42", false, ""))

	if got := buf.String(); got != "$42\n" {
		t.Errorf("output = %q, want each token printed once", got)
	}
}

func TestReplSurfaceReplacementStartsOver(t *testing.T) {
	s, buf := newTestSurface()

	s.UpdateMessage(assistantTurn("partial", true, ""))
	// A fallback answer replaces the text instead of extending it.
	s.UpdateMessage(assistantTurn("done", false, ""))

	if got := buf.String(); got != "partial\ndone\n" {
		t.Errorf("output = %q, want replacement on its own line", got)
	}
}

func TestReplSurfaceStripsControlSequences(t *testing.T) {
	s, buf := newTestSurface()

	s.UpdateMessage(assistantTurn("\x1b[2Jboom\x07", false, ""))

	got := buf.String()
	if strings.ContainsAny(got, "\x1b\x07") {
		t.Errorf("output %q still carries control bytes", got)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("output = %q, want the text kept", got)
	}
}

func TestReplSurfaceIgnoresUserTurns(t *testing.T) {
	s, buf := newTestSurface()

	s.AppendMessage(model.Message{Role: model.RoleUser, Content: "hello"})
	s.UpdateMessage(model.Message{Role: model.RoleUser, Content: "hello"})

	if buf.Len() != 0 {
		t.Errorf("output = %q, want user turns unprinted (liner already echoed them)", buf.String())
	}
}

func TestReplSurfaceNotesChart(t *testing.T) {
	s, buf := newTestSurface()

	s.UpdateMessage(assistantTurn("see chart", false, "aGVsbG8="))

	if !strings.Contains(buf.String(), "[chart attached]") {
		t.Errorf("output = %q, want the chart note", buf.String())
	}
}
