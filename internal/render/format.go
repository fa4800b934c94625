// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package render turns raw answer text into display text.
package render

import (
	"regexp"
	"strings"
	"time"
)

// The server's answers carry a deliberately tiny markup subset:
// **bold**, *italic* and `code`. Nothing nests.
var (
	strongRe = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emRe     = regexp.MustCompile(`\*(.*?)\*`)
	codeRe   = regexp.MustCompile("`(.*?)`")
)

// controlRe matches C0 control characters other than tab and newline,
// plus DEL. ESC in particular must never pass through from server text:
// the terminal would execute it.
var controlRe = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

// Sanitize strips terminal control characters from answer text,
// keeping tabs and newlines. Runs before markup so an injected
// sequence cannot hide inside a styled span.
func Sanitize(text string) string {
	return controlRe.ReplaceAllString(text, "")
}

// =============================================================================
// MARKUP
// =============================================================================

// Markup supplies the decoration for each span kind. The transforms
// receive the span's inner text with the delimiters already stripped.
type Markup struct {
	Strong    func(string) string
	Em        func(string) string
	Code      func(string) string
	LineBreak string
}

// Apply sanitizes text, then rewrites its markup spans using mk.
// Bold goes first so ** never half-matches as italic, then italic,
// then code, then line breaks.
func Apply(text string, mk Markup) string {
	text = Sanitize(text)
	if mk.Strong != nil {
		text = strongRe.ReplaceAllStringFunc(text, func(m string) string {
			return mk.Strong(m[2 : len(m)-2])
		})
	}
	if mk.Em != nil {
		text = emRe.ReplaceAllStringFunc(text, func(m string) string {
			return mk.Em(m[1 : len(m)-1])
		})
	}
	if mk.Code != nil {
		text = codeRe.ReplaceAllStringFunc(text, func(m string) string {
			return mk.Code(m[1 : len(m)-1])
		})
	}
	if mk.LineBreak != "" {
		text = strings.ReplaceAll(text, "\n", mk.LineBreak)
	}
	return text
}

// Timestamp formats a message time the way the transcript shows it.
func Timestamp(t time.Time) string {
	return t.Format("15:04:05")
}
