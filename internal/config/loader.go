// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
)

// ConfigFileName is the file paddock looks for when no path is given.
const ConfigFileName = "paddock.hjson"

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes HJSON config data.
func (l *Loader) Parse(data []byte) (*Config, error) {
	// Parse HJSON to intermediate map
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Convert to JSON and unmarshal to struct (for type safety)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied and validates it.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// FindConfig searches for a config file in the current directory, then in
// the user's config directory.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{filepath.Join(".", ConfigFileName)}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "paddock", ConfigFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "paddock", ConfigFileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for %s)", strings.Join(candidates, ", "))
}

// ApplyDefaults sets default values for missing config fields.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = []string{"dev", "dev_alt"}
	}
	if cfg.PortStride == 0 {
		cfg.PortStride = 10
	}
	if cfg.LogBufferSize == 0 {
		cfg.LogBufferSize = 10000
	}

	home, _ := os.UserHomeDir()
	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(home, ".paddock", "state.json")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(home, ".paddock", "logs")
	}
	if cfg.Crashes.Dir == "" {
		cfg.Crashes.Dir = filepath.Join(home, ".paddock", "crashes")
	}
	cfg.StateFile = ExpandHome(cfg.StateFile)
	cfg.LogDir = ExpandHome(cfg.LogDir)
	cfg.Crashes.Dir = ExpandHome(cfg.Crashes.Dir)

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7070
	}

	// Timing defaults
	if cfg.Timing.PortRetries == 0 {
		cfg.Timing.PortRetries = 5
	}
	if cfg.Timing.TruncateEvery == 0 {
		cfg.Timing.TruncateEvery = 60
	}

	// Crash report defaults
	if cfg.Crashes.MaxAge == "" {
		cfg.Crashes.MaxAge = "168h"
	}
	if cfg.Crashes.MaxCount == 0 {
		cfg.Crashes.MaxCount = 100
	}
	if cfg.Crashes.Lines == 0 {
		cfg.Crashes.Lines = 200
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	for i := range cfg.Projects {
		cfg.Projects[i].Path = ExpandHome(cfg.Projects[i].Path)
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
