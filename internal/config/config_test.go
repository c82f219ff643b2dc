// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults and duration parsing

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
	configPath := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

api:
  base_url: "https://tm.example.com/api/v1/"
  timeout: "15s"

session:
  cookie_name: "tm_token"
  ttl: "8h"

executions:
  pending_status_id: 7

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
	if cfg.API.BaseURL != "https://tm.example.com/api/v1" {
		t.Errorf("API.BaseURL = %q, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 15*time.Second)
	}
	if cfg.Session.CookieName != "tm_token" {
		t.Errorf("Session.CookieName = %q, want %q", cfg.Session.CookieName, "tm_token")
	}
	if cfg.Session.TTL != 8*time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 8*time.Hour)
	}
	if cfg.Executions.PendingStatusID != 7 {
		t.Errorf("Executions.PendingStatusID = %d, want 7", cfg.Executions.PendingStatusID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, "logging:\n  level: warn\n")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, DefaultAPIBaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %v, want no timeout", cfg.API.Timeout)
	}
	if cfg.Session.CookieName != "access_token" {
		t.Errorf("Session.CookieName = %q, want access_token", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Executions.PendingStatusID != 4 {
		t.Errorf("Executions.PendingStatusID = %d, want 4", cfg.Executions.PendingStatusID)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_TM_API", "http://api.internal:5000/api/v1")
	t.Setenv("TEST_TS_KEY", "tskey-from-env")

	configPath := writeConfig(t, `
api:
  base_url: "${TEST_TM_API}"
tailscale:
  enabled: true
  hostname: "testdesk"
  auth_key: "${TEST_TS_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://api.internal:5000/api/v1" {
		t.Errorf("API.BaseURL = %q, want expanded value", cfg.API.BaseURL)
	}
	if cfg.Tailscale.AuthKey != "tskey-from-env" {
		t.Errorf("Tailscale.AuthKey = %q, want %q", cfg.Tailscale.AuthKey, "tskey-from-env")
	}
	if cfg.Server.HTTPAddr != "" {
		t.Errorf("Server.HTTPAddr = %q, want empty when tailscale is enabled", cfg.Server.HTTPAddr)
	}
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	configPath := writeConfig(t, `
session:
  cookie_name: "${TM_SURELY_UNSET_VAR}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.CookieName != DefaultCookieName {
		t.Errorf("Session.CookieName = %q, want default after empty expansion", cfg.Session.CookieName)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
api:
  timeout: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "api.timeout") {
		t.Errorf("error = %v, want mention of api.timeout", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/console.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "tailscale without hostname",
			mutate:  func(c *Config) { c.Tailscale.Enabled = true },
			wantErr: "tailscale.hostname",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.API.BaseURL = "/api/v1" },
			wantErr: "api.base_url",
		},
		{
			name:    "unsupported scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://example.com/api" },
			wantErr: "scheme",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: "api.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
