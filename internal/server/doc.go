// Package server provides the shared server context, chat session
// management, and HTTP transport for the calagent application.
//
// # Key Components
//
// ServerContext manages Google Calendar clients with lazy initialization
// and caching. It supports multiple accounts and builds per-request
// orchestrators that drive the agent loop against the right calendar.
//
// ChatHandler exposes the HTTP transport:
//   - POST /chat runs one agent turn against a chat session
//   - POST /confirm resolves a delete confirmation the agent parked
//   - GET /confirm/pending lists deletions awaiting a decision
//
// SessionManager tracks chat sessions and their conversation history,
// enabling multiple users or accounts to share a single server instance.
// Idle sessions expire after a configurable timeout.
//
// HealthChecker serves /healthz and /readyz for Kubernetes probes, and
// MetricsServer serves Prometheus metrics on a dedicated port so
// operational data stays off the main listener.
package server
