// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for rigchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.rigchat/config.toml
//   - ~/.rigchat/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rigchat/internal/transport"
	"github.com/jeranaias/rigchat/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the main configuration structure for rigchat.
type Config struct {
	// Version is the config schema version
	Version string `toml:"version" json:"version"`

	// Server settings for the assistant connection
	Server ServerConfig `toml:"server" json:"server"`

	// Logging settings
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// UI settings
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServerConfig contains connection settings.
type ServerConfig struct {
	// URL is the WebSocket endpoint of the assistant
	URL string `toml:"url" json:"url"`
	// EndOfTurnMarker is the frame text that ends a reply. Set it to an
	// empty string to rely on silence alone.
	EndOfTurnMarker string `toml:"end_of_turn_marker" json:"end_of_turn_marker"`
	// HandshakeTimeoutSecs bounds the opening handshake
	HandshakeTimeoutSecs int `toml:"handshake_timeout_secs" json:"handshake_timeout_secs"`
	// WriteTimeoutSecs bounds a single send
	WriteTimeoutSecs int `toml:"write_timeout_secs" json:"write_timeout_secs"`
	// MaxMessageKB limits the size of an incoming frame
	MaxMessageKB int `toml:"max_message_kb" json:"max_message_kb"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error, disabled
	Level string `toml:"level" json:"level"`
	// File is the log file path. The terminal belongs to the UI, so logs
	// always go to a file.
	File string `toml:"file" json:"file"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Plain forces the line-mode shell even on a terminal
	Plain bool `toml:"plain" json:"plain"`
	// ShowTimestamps prefixes each turn with its time
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	logFile := "rigchat.log"
	if dir, err := ConfigDir(); err == nil {
		logFile = filepath.Join(dir, "rigchat.log")
	}

	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			URL:                  "ws://localhost:8000/ws",
			EndOfTurnMarker:      transport.DefaultEndOfTurnMarker,
			HandshakeTimeoutSecs: 10,
			WriteTimeoutSecs:     10,
			MaxMessageKB:         1024,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  logFile,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadTOML decodes a TOML file into cfg. Keys missing from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg. Keys missing from the file keep
// their current values.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# rigchat configuration file\n")
	buf.WriteString("# Generated by rigchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if u, err := url.Parse(c.Server.URL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else {
		if u.Scheme != "ws" && u.Scheme != "wss" {
			errs = append(errs, ValidationError{
				Field:   "server.url",
				Message: fmt.Sprintf("invalid scheme '%s', must be ws or wss", u.Scheme),
			})
		}
		if u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.url",
				Message: "host is required",
			})
		}
	}

	if c.Server.HandshakeTimeoutSecs < 1 || c.Server.HandshakeTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "server.handshake_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Server.HandshakeTimeoutSecs),
		})
	}
	if c.Server.WriteTimeoutSecs < 1 || c.Server.WriteTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "server.write_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Server.WriteTimeoutSecs),
		})
	}
	if c.Server.MaxMessageKB < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.max_message_kb",
			Message: "must be positive",
		})
	}

	// Logging
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil || c.Logging.Level == "" {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error, disabled", c.Logging.Level),
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults. EndOfTurnMarker is left alone
// so an explicit empty value keeps marker detection off.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.HandshakeTimeoutSecs == 0 {
		c.Server.HandshakeTimeoutSecs = defaults.Server.HandshakeTimeoutSecs
	}
	if c.Server.WriteTimeoutSecs == 0 {
		c.Server.WriteTimeoutSecs = defaults.Server.WriteTimeoutSecs
	}
	if c.Server.MaxMessageKB == 0 {
		c.Server.MaxMessageKB = defaults.Server.MaxMessageKB
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = defaults.Logging.File
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGCHAT_URL: overrides server.url
//   - RIGCHAT_END_MARKER: overrides server.end_of_turn_marker
//   - RIGCHAT_LOG_LEVEL: overrides logging.level
//   - RIGCHAT_LOG_FILE: overrides logging.file
//   - RIGCHAT_THEME: overrides ui.theme
//   - RIGCHAT_PLAIN: set to "1" or "true" to force the line-mode shell
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGCHAT_URL"); v != "" {
		c.Server.URL = v
	}
	if v, ok := os.LookupEnv("RIGCHAT_END_MARKER"); ok {
		c.Server.EndOfTurnMarker = v
	}
	if v := os.Getenv("RIGCHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RIGCHAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("RIGCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RIGCHAT_PLAIN"); v != "" {
		plain, err := strconv.ParseBool(v)
		c.UI.Plain = err == nil && plain
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// SessionOptions converts the server settings into transport options.
func (c *Config) SessionOptions(logger zerolog.Logger) transport.Options {
	opts := transport.DefaultOptions()
	opts.URL = c.Server.URL
	opts.EndOfTurnMarker = c.Server.EndOfTurnMarker
	opts.HandshakeTimeout = time.Duration(c.Server.HandshakeTimeoutSecs) * time.Second
	opts.WriteTimeout = time.Duration(c.Server.WriteTimeoutSecs) * time.Second
	opts.MaxMessageSize = int64(c.Server.MaxMessageKB) * 1024
	opts.Logger = logger
	return opts
}

// String returns the config encoded as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
