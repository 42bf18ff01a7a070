// Package config loads toothdex settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/toothdex/internal/leaderboard"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultPath is the document written by the file backend.
const DefaultPath = "dental_patterns.json"

// Config holds every setting the CLI needs to open a store.
type Config struct {
	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the JSON document or SQLite database path.
	Path string `yaml:"path"`

	// LeaderboardSize is the number of rare patterns kept, at most 10.
	LeaderboardSize int `yaml:"leaderboard_size"`

	// RareThreshold is the score a submission must exceed to be ranked,
	// at least 90.
	RareThreshold int `yaml:"rare_threshold"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:         BackendFile,
		Path:            DefaultPath,
		LeaderboardSize: leaderboard.DefaultSize,
		RareThreshold:   leaderboard.DefaultThreshold,
		LogLevel:        "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("backend %q: must be %q or %q", c.Backend, BackendFile, BackendSQLite)
	}
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("path is required")
	}
	if c.LeaderboardSize < 1 || c.LeaderboardSize > leaderboard.DefaultSize {
		return fmt.Errorf("leaderboard_size %d: must be in [1,%d]", c.LeaderboardSize, leaderboard.DefaultSize)
	}
	if c.RareThreshold < leaderboard.DefaultThreshold || c.RareThreshold > 100 {
		return fmt.Errorf("rare_threshold %d: must be in [%d,100]", c.RareThreshold, leaderboard.DefaultThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Policy returns the leaderboard policy described by c.
func (c Config) Policy() leaderboard.Policy {
	return leaderboard.Policy{Size: c.LeaderboardSize, Threshold: c.RareThreshold}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", name, err)
	}
	return level, nil
}
