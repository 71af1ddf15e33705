// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var envVars = []string{
	"RIGCHAT_URL",
	"RIGCHAT_END_MARKER",
	"RIGCHAT_LOG_LEVEL",
	"RIGCHAT_LOG_FILE",
	"RIGCHAT_THEME",
	"RIGCHAT_PLAIN",
}

// isolate points HOME at a temp dir and clears RIGCHAT_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	isolate(t)

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.URL != "ws://localhost:8000/ws" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.EndOfTurnMarker != "__END__" {
		t.Errorf("EndOfTurnMarker = %q", cfg.Server.EndOfTurnMarker)
	}
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.File != filepath.Join(home, ".rigchat", "rigchat.log") {
		t.Errorf("log file = %q", cfg.Logging.File)
	}
}

// =============================================================================
// FILE LOADING
// =============================================================================

func TestLoad_PrefersTOML(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".rigchat", "config.toml"), `
[server]
url = "ws://toml.example:9000/ws"
`)
	writeFile(t, filepath.Join(home, ".rigchat", "config.json"), `{"server":{"url":"ws://json.example/ws"}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "ws://toml.example:9000/ws" {
		t.Errorf("URL = %q, want TOML value", cfg.Server.URL)
	}
	if cfg.Server.HandshakeTimeoutSecs != 10 {
		t.Errorf("missing keys should keep defaults, got %d", cfg.Server.HandshakeTimeoutSecs)
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".rigchat", "config.json"), `{"server":{"url":"wss://json.example/ws"},"ui":{"theme":"light"}}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "wss://json.example/ws" || cfg.UI.Theme != "light" {
		t.Errorf("got url=%q theme=%q", cfg.Server.URL, cfg.UI.Theme)
	}
}

func TestLoadFromPath_ExplicitEmptyMarkerDisablesDetection(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "rigchat.toml")
	writeFile(t, path, `
[server]
end_of_turn_marker = ""
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.EndOfTurnMarker != "" {
		t.Errorf("marker = %q, want empty", cfg.Server.EndOfTurnMarker)
	}
}

func TestLoadFromPath_InvalidReturnsValidateErrors(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, `
[server]
url = "http://localhost:8000/ws"
[ui]
theme = "neon"
`)

	_, err := LoadFromPath(path)
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidateErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestLoadFromPath_MalformedFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, path, "[server\nurl = ")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.Server.URL = "tcp://host/ws" }, "server.url"},
		{"no host", func(c *Config) { c.Server.URL = "ws:///ws" }, "server.url"},
		{"handshake too long", func(c *Config) { c.Server.HandshakeTimeoutSecs = 1000 }, "server.handshake_timeout_secs"},
		{"write zero", func(c *Config) { c.Server.WriteTimeoutSecs = -1 }, "server.write_timeout_secs"},
		{"message size", func(c *Config) { c.Server.MaxMessageKB = -5 }, "server.max_message_kb"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("err = %v, want ValidateErrors", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RIGCHAT_URL", "wss://env.example/ws")
	t.Setenv("RIGCHAT_END_MARKER", "[DONE]")
	t.Setenv("RIGCHAT_LOG_LEVEL", "debug")
	t.Setenv("RIGCHAT_THEME", "dark")
	t.Setenv("RIGCHAT_PLAIN", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "wss://env.example/ws" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.EndOfTurnMarker != "[DONE]" {
		t.Errorf("marker = %q", cfg.Server.EndOfTurnMarker)
	}
	if cfg.Logging.Level != "debug" || cfg.UI.Theme != "dark" || !cfg.UI.Plain {
		t.Errorf("level=%q theme=%q plain=%v", cfg.Logging.Level, cfg.UI.Theme, cfg.UI.Plain)
	}
}

func TestApplyEnvOverrides_EmptyMarker(t *testing.T) {
	isolate(t)
	t.Setenv("RIGCHAT_END_MARKER", "")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.EndOfTurnMarker != "" {
		t.Errorf("marker = %q, want empty", cfg.Server.EndOfTurnMarker)
	}
}

// =============================================================================
// SAVE & CONVERSION
// =============================================================================

func TestSaveTOML_WritesLoadableFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.URL = "ws://saved.example:8000/ws"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("permissions = %o, want 600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL {
		t.Errorf("URL = %q, want %q", loaded.Server.URL, cfg.Server.URL)
	}
}

func TestSessionOptions(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Server.HandshakeTimeoutSecs = 3
	cfg.Server.MaxMessageKB = 2

	opts := cfg.SessionOptions(zerolog.Nop())
	if opts.URL != cfg.Server.URL || opts.EndOfTurnMarker != "__END__" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.HandshakeTimeout != 3*time.Second {
		t.Errorf("HandshakeTimeout = %v", opts.HandshakeTimeout)
	}
	if opts.MaxMessageSize != 2048 {
		t.Errorf("MaxMessageSize = %d", opts.MaxMessageSize)
	}
}
