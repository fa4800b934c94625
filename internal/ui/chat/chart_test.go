// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"
)

func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDetectChartCapability(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ChartCapability
	}{
		{"kitty window id", map[string]string{"KITTY_WINDOW_ID": "1"}, CapKitty},
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}, CapKitty},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, CapITerm},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, CapITerm},
		{"lc terminal", map[string]string{"LC_TERMINAL": "iTerm2"}, CapITerm},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, CapNone},
		{"empty env", map[string]string{}, CapNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectChartCapability(envMap(tt.env)); got != tt.want {
				t.Errorf("DetectChartCapability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeChart(t *testing.T) {
	img, err := DecodeChart(tinyPNG(t))
	if err != nil {
		t.Fatalf("DecodeChart() error = %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("width = %d, want 2", img.Bounds().Dx())
	}
}

func TestDecodeChartBadPayloads(t *testing.T) {
	if _, err := DecodeChart("not base64!!!"); err == nil {
		t.Error("DecodeChart() accepted invalid base64")
	}
	if _, err := DecodeChart(base64.StdEncoding.EncodeToString([]byte("not a png"))); err == nil {
		t.Error("DecodeChart() accepted non-PNG bytes")
	}
}

func TestRenderChartFallsBackToPlaceholder(t *testing.T) {
	if got := RenderChart("garbage", CapKitty); got != ChartPlaceholder {
		t.Errorf("RenderChart(garbage) = %q, want placeholder", got)
	}
	if got := RenderChart(tinyPNG(t), CapNone); got != ChartPlaceholder {
		t.Errorf("RenderChart with no capability = %q, want placeholder", got)
	}
	if got := RenderChart("", CapKitty); got != "" {
		t.Errorf("RenderChart(\"\") = %q, want empty", got)
	}
}

func TestRenderChartKittyEscape(t *testing.T) {
	out := RenderChart(tinyPNG(t), CapKitty)
	if out == ChartPlaceholder || out == "" {
		t.Fatalf("RenderChart() = %q, want escape sequence", out)
	}
	if !strings.Contains(out, "\x1b") {
		t.Error("kitty output carries no escape sequence")
	}
}
