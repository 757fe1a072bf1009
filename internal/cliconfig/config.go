package cliconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/bulk/internal/app"
	"github.com/bft-labs/bulk/internal/domain"
)

// Defaults for the CLI.
const (
	DefaultBlockSize   = 3
	DefaultFileThreads = 2
	DefaultListen      = "127.0.0.1:9000"
	DefaultReadBuffer  = 4096
)

// Config holds CLI configuration for bulk.
type Config struct {
	BlockSize    int
	FileThreads  int
	OutputDir    string
	LineCapacity int
	Overflow     string

	Listen      string
	MetricsAddr string
	ReadBuffer  int

	LogLevel    string
	LogFormat   string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BlockSize:    DefaultBlockSize,
		FileThreads:  DefaultFileThreads,
		OutputDir:    ".",
		LineCapacity: app.DefaultLineCapacity,
		Overflow:     app.OverflowTruncate.String(),
		Listen:       DefaultListen,
		ReadBuffer:   DefaultReadBuffer,
		LogLevel:     "info",
		LogFormat:    FormatConsole,
	}
}

// Validate checks the configuration for errors and normalizes string fields.
func (c *Config) Validate() error {
	if c.BlockSize < 1 {
		return fmt.Errorf("%w: block size must be positive", domain.ErrInvalidConfig)
	}
	if c.FileThreads < 1 {
		return fmt.Errorf("%w: threads must be positive", domain.ErrInvalidConfig)
	}
	if c.LineCapacity < 1 {
		return fmt.Errorf("%w: line capacity must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadBuffer < 1 {
		return fmt.Errorf("%w: read buffer must be positive", domain.ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	if _, err := app.ParseOverflowPolicy(c.Overflow); err != nil {
		return err
	}
	c.Overflow = strings.ToLower(strings.TrimSpace(c.Overflow))
	if c.Overflow == "" {
		c.Overflow = app.OverflowTruncate.String()
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat == "" {
		c.LogFormat = FormatConsole
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		return fmt.Errorf("%w: unknown log format %q", domain.ErrInvalidConfig, c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SessionConfig converts the connection settings for the engine.
// Validate must have succeeded.
func (c Config) SessionConfig() app.SessionConfig {
	overflow, _ := app.ParseOverflowPolicy(c.Overflow)
	return app.SessionConfig{
		BlockSize:    c.BlockSize,
		FileThreads:  c.FileThreads,
		OutputDir:    c.OutputDir,
		LineCapacity: c.LineCapacity,
		Overflow:     overflow,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
