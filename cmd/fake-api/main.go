// ABOUTME: Entry point for the stub test-management API server
// ABOUTME: Serves the REST contract over SQLite for local development and demos

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/auth"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/entity"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/fakeapi"
	"github.com/Oleksiak-Inc/FileManagementTool/internal/store"
)

func main() {
	configPath := flag.String("config", "", "TOML config file with listen address, secret and seed data")
	listen := flag.String("listen", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config, default in-memory)")
	logLevel := flag.String("log-level", "info", "log level (debug/info/warn/error)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *listen, *dbPath, *logLevel); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, listen, dbPath, logLevel string) error {
	cfg := fakeapi.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = fakeapi.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger := setupLogger(logLevel)
	slog.SetDefault(logger)

	secret := cfg.JWTSecret
	if secret == "" {
		// Tokens will not survive a restart.
		secret = uuid.NewString()
		logger.Warn("jwt_secret not set, using a random secret")
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	srv := fakeapi.New(st, auth.NewJWTIssuer([]byte(secret), cfg.TokenTTL), entity.Default())
	if err := srv.Seed(ctx, cfg); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("API:      http://%s%s\n", cfg.Listen, fakeapi.BasePath)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.DBPath)
	green.Print("    ▶ ")
	fmt.Printf("Testers:  %d seeded\n\n", len(cfg.Testers))

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub API listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("context canceled, initiating shutdown")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
