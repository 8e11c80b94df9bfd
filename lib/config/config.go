// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "SUPPORTDESK_CONFIG"

// Config is the master configuration for the support desk binaries.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Logging configures the slog handler used by both binaries.
	Logging LoggingConfig `yaml:"logging"`

	// Console configures the admin console and its sync engine.
	Console ConsoleConfig `yaml:"console"`

	// Desk configures the development ticket backend.
	Desk DeskConfig `yaml:"desk"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
	Console *ConsoleConfig `yaml:"console,omitempty"`
	Desk    *DeskConfig    `yaml:"desk,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for support desk state.
	Root string `yaml:"root"`

	// Run holds the unix sockets.
	// Default: ${SUPPORTDESK_ROOT}/run
	Run string `yaml:"run"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: debug (development), info (production)
	Level string `yaml:"level"`

	// File receives log output. The console owns the terminal, so it
	// discards logs when File is empty; the desk service writes to
	// stderr instead.
	File string `yaml:"file"`
}

// ConsoleConfig configures the admin console.
type ConsoleConfig struct {
	// SocketPath is the ticket backend socket the console connects to.
	// Default: ${SUPPORTDESK_RUN}/desk.sock
	SocketPath string `yaml:"socket_path"`

	// ListInterval is the ticket list polling period.
	// Default: 5s
	ListInterval string `yaml:"list_interval"`

	// DetailInterval is the open ticket polling period.
	// Default: 3s
	DetailInterval string `yaml:"detail_interval"`

	// FetchTimeout bounds each list or detail fetch.
	// Default: 10s
	FetchTimeout string `yaml:"fetch_timeout"`

	// ReadReceiptTimeout bounds each fire-and-forget mark-read call.
	// Default: 5s
	ReadReceiptTimeout string `yaml:"read_receipt_timeout"`

	// Bell rings the terminal bell on new customer messages.
	// Default: true
	Bell bool `yaml:"bell"`
}

// DeskConfig configures the development ticket backend.
type DeskConfig struct {
	// SocketPath is where the backend listens.
	// Default: ${SUPPORTDESK_RUN}/desk.sock
	SocketPath string `yaml:"socket_path"`

	// SeedFile is an optional JSONC file of tickets loaded at startup.
	SeedFile string `yaml:"seed_file"`
}

// ConsoleTimings holds the parsed durations of a [ConsoleConfig].
type ConsoleTimings struct {
	ListInterval       time.Duration
	DetailInterval     time.Duration
	FetchTimeout       time.Duration
	ReadReceiptTimeout time.Duration
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "supportdesk")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root: defaultRoot,
			Run:  "${SUPPORTDESK_ROOT}/run",
		},
		Logging: LoggingConfig{
			Level: "debug",
		},
		Console: ConsoleConfig{
			SocketPath:         "${SUPPORTDESK_RUN}/desk.sock",
			ListInterval:       "5s",
			DetailInterval:     "3s",
			FetchTimeout:       "10s",
			ReadReceiptTimeout: "5s",
			Bell:               true,
		},
		Desk: DeskConfig{
			SocketPath: "${SUPPORTDESK_RUN}/desk.sock",
		},
	}
}

// Load loads configuration from the SUPPORTDESK_CONFIG environment variable.
//
// There are no fallbacks or defaults - if SUPPORTDESK_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf(EnvVar + " environment variable not set; " +
			"set it to the path of your supportdesk.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Environment variables do not override config values. The only
// expansion performed is ${VAR} and ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: quieter logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Level: "info"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Run != "" {
			c.Paths.Run = overrides.Paths.Run
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.File != "" {
			c.Logging.File = overrides.Logging.File
		}
	}

	if overrides.Console != nil {
		if overrides.Console.SocketPath != "" {
			c.Console.SocketPath = overrides.Console.SocketPath
		}
		if overrides.Console.ListInterval != "" {
			c.Console.ListInterval = overrides.Console.ListInterval
		}
		if overrides.Console.DetailInterval != "" {
			c.Console.DetailInterval = overrides.Console.DetailInterval
		}
		if overrides.Console.FetchTimeout != "" {
			c.Console.FetchTimeout = overrides.Console.FetchTimeout
		}
		if overrides.Console.ReadReceiptTimeout != "" {
			c.Console.ReadReceiptTimeout = overrides.Console.ReadReceiptTimeout
		}
		// Bell is a bool, so we always apply it from overrides.
		c.Console.Bell = overrides.Console.Bell
	}

	if overrides.Desk != nil {
		if overrides.Desk.SocketPath != "" {
			c.Desk.SocketPath = overrides.Desk.SocketPath
		}
		if overrides.Desk.SeedFile != "" {
			c.Desk.SeedFile = overrides.Desk.SeedFile
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"SUPPORTDESK_ROOT": c.Paths.Root,
		"HOME":             os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["SUPPORTDESK_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Run = expandVars(c.Paths.Run, vars)
	vars["SUPPORTDESK_RUN"] = c.Paths.Run

	c.Logging.File = expandVars(c.Logging.File, vars)
	c.Console.SocketPath = expandVars(c.Console.SocketPath, vars)
	c.Desk.SocketPath = expandVars(c.Desk.SocketPath, vars)
	c.Desk.SeedFile = expandVars(c.Desk.SeedFile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Timings parses the console's duration strings.
func (c *ConsoleConfig) Timings() (ConsoleTimings, error) {
	var timings ConsoleTimings
	var errs []error
	parse := func(field, value string, target *time.Duration) {
		duration, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("console.%s: %w", field, err))
			return
		}
		if duration <= 0 {
			errs = append(errs, fmt.Errorf("console.%s must be positive, got %s", field, value))
			return
		}
		*target = duration
	}
	parse("list_interval", c.ListInterval, &timings.ListInterval)
	parse("detail_interval", c.DetailInterval, &timings.DetailInterval)
	parse("fetch_timeout", c.FetchTimeout, &timings.FetchTimeout)
	parse("read_receipt_timeout", c.ReadReceiptTimeout, &timings.ReadReceiptTimeout)
	if len(errs) > 0 {
		return ConsoleTimings{}, errors.Join(errs...)
	}
	return timings, nil
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if c.Console.SocketPath == "" {
		errs = append(errs, fmt.Errorf("console.socket_path is required"))
	}

	if c.Desk.SocketPath == "" {
		errs = append(errs, fmt.Errorf("desk.socket_path is required"))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Console.Timings(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Run} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
