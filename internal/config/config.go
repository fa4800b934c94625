// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

// Package config provides settings loading and persistence.
//
// Settings live in ~/.mcp-assistant/settings.toml with built-in
// defaults and an environment variable override:
//   - MCP_ASSISTANT_SERVER_URL overrides server_url
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultServerURL is the server address used until the user saves one.
const DefaultServerURL = "http://localhost:3001"

// EnvServerURL overrides the configured server address when set.
const EnvServerURL = "MCP_ASSISTANT_SERVER_URL"

const settingsFile = "settings.toml"

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the persisted user settings.
type Settings struct {
	// ServerURL is the MCP server base address.
	ServerURL string `toml:"server_url"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		ServerURL: DefaultServerURL,
	}
}

// Validate checks the settings for usability.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", s.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL %q must use http or https", s.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL %q has no host", s.ServerURL)
	}
	return nil
}

// =============================================================================
// LOADING AND SAVING
// =============================================================================

// Dir returns the settings directory (~/.mcp-assistant).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".mcp-assistant"), nil
}

// Path returns the settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// Load reads the settings file, applying defaults and the environment
// override. A missing file is not an error; a malformed one is.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads settings from an explicit path.
func LoadFromPath(path string) (*Settings, error) {
	s := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}

	if env := os.Getenv(EnvServerURL); env != "" {
		s.ServerURL = env
	}
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings to the default location.
func Save(s *Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(s, path)
}

// SaveToPath writes the settings to an explicit path, creating the
// directory as needed. The file is written 0600.
func SaveToPath(s *Settings, path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer file.Close()

	// Keep permissions tight even when the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set settings file permissions: %w", err)
	}

	fmt.Fprintln(file, "# mcp-assistant settings")
	fmt.Fprintln(file, "# Edit here or press ctrl+s inside the app")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}
