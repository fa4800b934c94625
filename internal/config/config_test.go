// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()
	require.Equal(t, "http://localhost:3001", s.ServerURL)
	require.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:3001", false},
		{"https", "https://assistant.example.com", false},
		{"no scheme", "localhost:3001", true},
		{"bad scheme", "ftp://host", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{ServerURL: tt.url}
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	want := &Settings{ServerURL: "http://10.0.0.5:3001"}
	require.NoError(t, SaveToPath(want, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, want.ServerURL, got.ServerURL)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, DefaultServerURL, s.ServerURL)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("server_url = [not toml"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, SaveToPath(&Settings{ServerURL: "http://from-file:3001"}, path))

	t.Setenv(EnvServerURL, "http://from-env:3001")

	s, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "http://from-env:3001", s.ServerURL)
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.Error(t, SaveToPath(&Settings{ServerURL: "not a url"}, path))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, SaveToPath(Default(), path))

	var mu sync.Mutex
	var got *Settings
	w, err := NewWatcher(path, func(s *Settings) {
		mu.Lock()
		got = s
		mu.Unlock()
	}, t.Logf)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, SaveToPath(&Settings{ServerURL: "http://changed:3001"}, path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.ServerURL == "http://changed:3001"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcherIgnoresMalformedWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Settings, 1)
	w, err := NewWatcher(path, func(s *Settings) { reloads <- s }, t.Logf)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, os.WriteFile(path, []byte("server_url = [broken"), 0600))

	select {
	case s := <-reloads:
		t.Errorf("malformed write triggered a reload: %+v", s)
	case <-time.After(time.Second):
	}
}
