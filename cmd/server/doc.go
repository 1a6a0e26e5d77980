// Package main is the entry point for the preview engine server.
//
// The server keeps a whole project in memory as a path-to-content table,
// renders it into sandboxed document generations, and answers in-context
// resource fetches from the table over a message bridge.
//
// The server provides:
//   - REST API for project files, the current generation, and handle serving
//   - WebSocket streaming for edits and preview updates
//   - Editable overlay commits back into the project table
//   - Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional TOML file via -config
//   - CLI flags (override config)
//
// Usage:
//
//	# Environment-driven
//	PORT=8400 ./server
//
//	# Local development
//	./server -config dev.toml -addr 127.0.0.1:8400
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
