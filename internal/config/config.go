// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the streamchat configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/streamchat/internal/util"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config is the full streamchat configuration. Layering, lowest to
// highest precedence: built-in defaults, the TOML file, environment
// variables, command-line flags.
type Config struct {
	// Host is the chat service base URL.
	Host string `toml:"host"`

	// Model is the default model for new conversations.
	Model string `toml:"model"`

	// TimeoutSeconds bounds non-streaming requests.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Stream controls whether replies arrive fragment by fragment.
	// When false each reply comes back whole in a single response.
	Stream bool `toml:"stream"`

	UI UIConfig `toml:"ui"`
}

// UIConfig controls the interactive surfaces.
type UIConfig struct {
	// Plain forces the line-oriented surface even on a TTY.
	Plain bool `toml:"plain"`

	// Markdown renders completed replies through the markdown renderer.
	Markdown bool `toml:"markdown"`

	// ShowStats prints tokens/sec after completed replies.
	ShowStats bool `toml:"show_stats"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:           "http://localhost:11434",
		Model:          "llama3.3",
		TimeoutSeconds: 30,
		Stream:         true,
		UI: UIConfig{
			Markdown:  true,
			ShowStats: true,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the configuration directory (~/.streamchat), falling back
// to the working directory when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".streamchat"
	}
	return filepath.Join(home, ".streamchat")
}

// Path returns the configuration file location.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, layering it over defaults and
// applying environment overrides. A missing file is not an error; the
// defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file; defaults stand.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config atomically, creating the directory if needed.
func (c *Config) Save(path string) error {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(b.String()), 0o644)
}

// applyEnvOverrides layers environment variables over file values.
//
// Supported variables:
//   - STREAMCHAT_HOST: overrides host
//   - STREAMCHAT_MODEL: overrides model
//   - STREAMCHAT_PLAIN: "1" or "true" forces the plain surface
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("STREAMCHAT_HOST"); host != "" {
		c.Host = host
	}
	if model := os.Getenv("STREAMCHAT_MODEL"); model != "" {
		c.Model = model
	}
	if plain := os.Getenv("STREAMCHAT_PLAIN"); plain != "" {
		c.UI.Plain = plain == "1" || strings.EqualFold(plain, "true")
	}
}

// fillDefaults repairs empty required fields after file/env layering.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Host == "" {
		c.Host = def.Host
	}
	c.Host = strings.TrimRight(c.Host, "/")
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
}
