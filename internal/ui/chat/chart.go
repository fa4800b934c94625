// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"

	"github.com/BourgeoisBear/rasterm"
)

// ChartPlaceholder is shown when the terminal cannot render images or
// the chart payload is unusable.
const ChartPlaceholder = "[chart attached]"

// =============================================================================
// TERMINAL IMAGE CAPABILITY
// =============================================================================

// ChartCapability represents the terminal's inline-image support.
type ChartCapability int

const (
	CapNone  ChartCapability = iota // No image support
	CapKitty                        // Kitty graphics protocol
	CapITerm                        // iTerm2 inline images
)

// String returns the capability name.
func (c ChartCapability) String() string {
	switch c {
	case CapKitty:
		return "kitty"
	case CapITerm:
		return "iterm"
	default:
		return "none"
	}
}

// DetectChartCapability inspects the environment for inline-image
// support. getenv is injected for testability; pass os.Getenv.
func DetectChartCapability(getenv func(string) string) ChartCapability {
	if getenv("KITTY_WINDOW_ID") != "" || strings.Contains(getenv("TERM"), "kitty") {
		return CapKitty
	}
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm":
		return CapITerm
	}
	if getenv("LC_TERMINAL") == "iTerm2" {
		return CapITerm
	}
	return CapNone
}

// =============================================================================
// CHART RENDERING
// =============================================================================

// DecodeChart decodes the server's base64 PNG chart payload.
func DecodeChart(data string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// RenderChart turns the chart payload into terminal output: an inline
// image escape sequence where supported, otherwise the placeholder.
// Bad payloads degrade to the placeholder; a chart must never break the
// transcript.
func RenderChart(data string, capability ChartCapability) string {
	if data == "" {
		return ""
	}
	if capability == CapNone {
		return ChartPlaceholder
	}

	img, err := DecodeChart(data)
	if err != nil {
		return ChartPlaceholder
	}

	var buf bytes.Buffer
	switch capability {
	case CapKitty:
		err = rasterm.KittyWriteImage(&buf, img, rasterm.KittyImgOpts{})
	case CapITerm:
		err = rasterm.ItermWriteImage(&buf, img)
	}
	if err != nil {
		return ChartPlaceholder
	}
	return buf.String()
}
