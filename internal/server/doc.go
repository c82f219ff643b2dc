// ABOUTME: Package server runs the testdesk console as an HTTP server
// ABOUTME: Plain TCP or a Tailscale tsnet node, with graceful shutdown on context cancel

// Package server owns the console's process lifecycle. New wires the API
// client, session gate and console pages from a config.Config; Run listens
// until its context is canceled and then shuts down within ShutdownTimeout.
//
// With tailscale.enabled the console joins the tailnet as its own node and
// serves on :80, or on :443 through Funnel when tailscale.funnel is set.
package server
