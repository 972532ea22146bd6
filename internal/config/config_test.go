// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

assistant:
  endpoint: "https://assistant.insecap.cl/api/chat"
  timeout: "60s"

storage:
  driver: "sqlite"
  path: "./capin.db"

auth:
  jwt_secret: "super-secret"
  required: true

session:
  history_limit: 100
  grace_window: "1s"
  greet_on_empty: true

telemetry:
  endpoint: "https://telemetry.insecap.cl/events"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}

	if cfg.Assistant.Endpoint != "https://assistant.insecap.cl/api/chat" {
		t.Errorf("Assistant.Endpoint = %q", cfg.Assistant.Endpoint)
	}
	if cfg.Assistant.Timeout != 60*time.Second {
		t.Errorf("Assistant.Timeout = %v, want %v", cfg.Assistant.Timeout, 60*time.Second)
	}

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Storage.Path != "./capin.db" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "./capin.db")
	}

	if !cfg.Auth.Required {
		t.Error("Auth.Required = false, want true")
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}

	if cfg.Session.HistoryLimit != 100 {
		t.Errorf("Session.HistoryLimit = %d, want 100", cfg.Session.HistoryLimit)
	}
	if cfg.Session.GraceWindow != time.Second {
		t.Errorf("Session.GraceWindow = %v, want %v", cfg.Session.GraceWindow, time.Second)
	}
	if !cfg.Session.GreetOnEmpty {
		t.Error("Session.GreetOnEmpty = false, want true")
	}

	if cfg.Telemetry.Endpoint != "https://telemetry.insecap.cl/events" {
		t.Errorf("Telemetry.Endpoint = %q", cfg.Telemetry.Endpoint)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("CAPIN_TEST_SECRET", "expanded-secret")
	t.Setenv("CAPIN_TEST_ENDPOINT", "https://assistant.example.com/api/chat")

	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

assistant:
  endpoint: "${CAPIN_TEST_ENDPOINT}"

auth:
  jwt_secret: "${CAPIN_TEST_SECRET}"
  required: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "expanded-secret")
	}
	if cfg.Assistant.Endpoint != "https://assistant.example.com/api/chat" {
		t.Errorf("Assistant.Endpoint = %q", cfg.Assistant.Endpoint)
	}
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

assistant:
  endpoint: "https://assistant.example.com/api/chat"

auth:
  jwt_secret: "${CAPIN_DEFINITELY_UNSET_VAR}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "" {
		t.Errorf("Auth.JWTSecret = %q, want empty", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() should have returned an error")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v, want reading config file error", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

assistant:
  endpoint: "https://assistant.example.com/api/chat"
  timeout: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should have returned an error")
	}
	if !strings.Contains(err.Error(), "assistant.timeout") {
		t.Errorf("Load() error = %v, want assistant.timeout parse error", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{HTTPAddr: ":8080"},
			Assistant: AssistantConfig{Endpoint: "https://assistant.example.com"},
			Storage:   StorageConfig{Driver: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid memory config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name:    "missing assistant endpoint",
			mutate:  func(c *Config) { c.Assistant.Endpoint = "" },
			wantErr: "assistant.endpoint",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Storage.Driver = "sqlite" },
			wantErr: "storage.path",
		},
		{
			name:    "bolt without path",
			mutate:  func(c *Config) { c.Storage.Driver = "bolt" },
			wantErr: "storage.path",
		},
		{
			name:   "sqlite with path",
			mutate: func(c *Config) { c.Storage = StorageConfig{Driver: "sqlite", Path: "./x.db"} },
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "redis" },
			wantErr: "storage.driver",
		},
		{
			name:    "auth required without secret",
			mutate:  func(c *Config) { c.Auth.Required = true },
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "negative history limit",
			mutate:  func(c *Config) { c.Session.HistoryLimit = -1 },
			wantErr: "history_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
