// Package main is the modloader command line tool.
//
// modloader evaluates CommonJS-style modules in an isolated JavaScript
// sandbox. Modules come from a manifest (YAML or TOML) that lists inline
// sources, files, remote URLs and glob patterns below a root directory.
//
// Usage:
//
//	# Load the manifest entry and print its exports as JSON
//	modloader run --manifest modloader.yaml
//
//	# Load a specific module with debug logging
//	modloader run -m modloader.yaml --entry lib/util.js --log-level debug
//
//	# Show the static require graph
//	modloader deps -m modloader.yaml
//
// Configuration:
//   - Environment variables (LOADER_*, LOG_*, METRICS_ENABLED)
//   - CLI flags (override env vars)
//   - Manifest whitelist (overrides LOADER_WHITELIST)
//
// Signals:
//   - SIGINT, SIGTERM: interrupt the running module
package main
