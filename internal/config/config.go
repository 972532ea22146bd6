// ABOUTME: Configuration loading and parsing for capin-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete capin-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// AssistantConfig holds the upstream assistant service configuration
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// StorageConfig selects and configures the conversation store backend
type StorageConfig struct {
	// Driver is one of "sqlite", "bolt", or "memory"
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// AuthConfig holds session token verification configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	// Required rejects unauthenticated requests. When false, requests
	// without a token fall back to the public role.
	Required bool `yaml:"required"`
}

// SessionConfig holds per-conversation tuning
type SessionConfig struct {
	HistoryLimit int           `yaml:"history_limit"`
	GraceWindow  time.Duration `yaml:"-"`
	GreetOnEmpty bool          `yaml:"greet_on_empty"`

	GraceWindowRaw string `yaml:"grace_window"`
}

// TelemetryConfig holds the optional usage event sink
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Assistant.Endpoint == "" {
		return fmt.Errorf("assistant.endpoint is required")
	}

	switch c.Storage.Driver {
	case "", "memory":
	case "sqlite", "bolt":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be one of sqlite, bolt, memory (got %q)", c.Storage.Driver)
	}

	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.required is set")
	}

	if c.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Assistant.TimeoutRaw != "" {
		cfg.Assistant.Timeout, err = time.ParseDuration(cfg.Assistant.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing assistant.timeout %q: %w", cfg.Assistant.TimeoutRaw, err)
		}
	}

	if cfg.Session.GraceWindowRaw != "" {
		cfg.Session.GraceWindow, err = time.ParseDuration(cfg.Session.GraceWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing session.grace_window %q: %w", cfg.Session.GraceWindowRaw, err)
		}
	}

	return nil
}
