// ABOUTME: Entry point for the capin-gateway conversation server
// ABOUTME: Wires storage, the assistant dispatcher, and the HTTP API together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/naatox/capin-gateway/internal/auth"
	"github.com/naatox/capin-gateway/internal/config"
	"github.com/naatox/capin-gateway/internal/dispatch"
	"github.com/naatox/capin-gateway/internal/orchestrator"
	"github.com/naatox/capin-gateway/internal/server"
	"github.com/naatox/capin-gateway/internal/session"
	"github.com/naatox/capin-gateway/internal/store"
	"github.com/naatox/capin-gateway/internal/telemetry"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the gateway config file.
// Priority: --config flag > CAPIN_CONFIG env var > XDG_CONFIG_HOME/capin/gateway.yaml > ~/.config/capin/gateway.yaml
func getConfigPath(args []string) string {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(args[i], "--config="):
			return strings.TrimPrefix(args[i], "--config=")
		}
	}

	if envPath := os.Getenv("CAPIN_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "capin", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: capin-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve [--config PATH]   Start the gateway server")
		fmt.Println("  health    Check gateway health")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath(os.Args[2:])

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info("starting capin-gateway",
		"version", version,
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"storage_driver", cfg.Storage.Driver,
	)

	kv, err := openStore(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	historyLimit := cfg.Session.HistoryLimit
	if historyLimit == 0 {
		historyLimit = session.DefaultHistoryLimit
	}

	sessions := session.NewStore(kv, logger)
	history := session.NewHistory(kv, historyLimit, logger)

	client := &http.Client{Timeout: cfg.Assistant.Timeout}
	dispatcher := dispatch.New(cfg.Assistant.Endpoint, client, logger)
	emitter := telemetry.New(cfg.Telemetry.Endpoint, logger)

	orch := orchestrator.New(sessions, history, dispatcher, emitter, logger, orchestrator.Options{
		GraceWindow:  cfg.Session.GraceWindow,
		GreetOnEmpty: cfg.Session.GreetOnEmpty,
		OnError: func(scope string, err error) {
			logger.Warn("conversation turn degraded", "scope", scope, "error", err)
		},
	})

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}

	handler := server.NewHandler(orch, verifier, cfg.Auth.Required, logger)
	e := handler.NewEcho()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Server.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore selects the storage backend and wraps it so storage failures
// degrade to in-memory behavior instead of breaking conversations.
func openStore(cfg config.StorageConfig, logger *slog.Logger) (store.KV, error) {
	var backend store.KV
	var err error

	switch cfg.Driver {
	case "sqlite":
		backend, err = store.NewSQLiteKV(cfg.Path)
	case "bolt":
		backend, err = store.NewBoltKV(cfg.Path)
	case "", "memory":
		backend = nil
	}
	if err != nil {
		return nil, err
	}

	return store.NewFallback(backend, logger), nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath(os.Args[2:])

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
