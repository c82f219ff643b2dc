// Package config handles configuration loading for tm-console.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TESTDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/testdesk/console.yaml
//  3. ~/.config/testdesk/console.yaml
//
// A missing file is not an error for `tm-console serve`; Default() is used.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	tailscale:
//	  enabled: false
//	  hostname: "testdesk"
//	  auth_key: "${TS_AUTHKEY}"
//	  state_dir: "~/.local/share/testdesk/tsnet"
//	  ephemeral: false
//	  funnel: false
//
//	api:
//	  base_url: "http://localhost:5000/api/v1"
//	  timeout: "0s"            # zero means no timeout
//
//	session:
//	  cookie_name: "access_token"
//	  ttl: "24h"
//
//	executions:
//	  pending_status_id: 4
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Duration values use Go's time.ParseDuration syntax.
package config
