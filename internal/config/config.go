// Package config handles wirevis configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/wirevis/internal/wire"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "wirevis.yaml"

// Config holds all application settings.
type Config struct {
	Logging  LoggingConfig `yaml:"logging"`
	Session  SessionConfig `yaml:"session"`
	Output   OutputConfig  `yaml:"output"`
	Defaults wire.Settings `yaml:"defaults"` // wire settings for objects without a wire block
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	LogFile  string `yaml:"log_file"`
	Encoding string `yaml:"encoding"` // log file encoding: console or json
}

// SessionConfig holds rebuild loop settings.
type SessionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Debounce     time.Duration `yaml:"debounce"` // file watcher quiet period
	Seed         uint64        `yaml:"seed"`     // jitter seed, 0 picks a new one each rebuild
}

// OutputConfig holds where generated wires go.
type OutputConfig struct {
	Dir    string `yaml:"dir"` // empty means next to the scene file
	Format string `yaml:"format"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Session: SessionConfig{
			TickInterval: 50 * time.Millisecond,
			Debounce:     100 * time.Millisecond,
		},
		Output: OutputConfig{
			Format: "obj",
		},
		Defaults: wire.DefaultSettings(),
	}
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.tick_interval must be positive, got %v", c.Session.TickInterval))
	}
	if c.Session.Debounce < 0 {
		errs = append(errs, fmt.Errorf("session.debounce must not be negative, got %v", c.Session.Debounce))
	}
	switch c.Output.Format {
	case "obj", "stl":
	default:
		errs = append(errs, fmt.Errorf("output.format must be obj or stl, got %q", c.Output.Format))
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	return errors.Join(errs...)
}
