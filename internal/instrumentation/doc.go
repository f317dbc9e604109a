// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the calagent assistant.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, OAuth operations, calendar API
//     calls, model round trips, and agent runs
//   - Distributed tracing for request flows and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active chat sessions
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of calendar operations by operation and status
//   - calendar_api_operation_duration_seconds: Histogram of calendar operation durations
//
// Model Metrics:
//   - model_round_trips_total: Counter of model round trips by model and status
//   - model_round_trip_duration_seconds: Histogram of model round-trip durations
//
// Agent Metrics:
//   - agent_runs_total: Counter of agent runs by outcome (answered, exhausted, failed)
//   - agent_run_iterations: Histogram of loop iterations consumed per run
//   - tool_invocations_total: Counter of tool invocations by tool name and status
//   - tool_duration_seconds: Histogram of tool execution durations
//   - delete_confirmations_total: Counter of delete confirmations by decision
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - Tool invocations (tool.<name>)
//   - Calendar API calls (calendar.<operation>)
//   - Model round trips (model.generate)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calagent)
//   - AUDIT_LOGGING_ENABLED: Enable/disable the audit log (default: true)
//   - AUDIT_LOGGING_INCLUDE_TITLES: Include event titles in audit logs (default: false)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "calagent",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/chat", 200, time.Since(start))
//
//	// Record a calendar operation
//	recorder.RecordCalendarOperation(ctx, "list", "success", time.Since(start))
//
//	// Record a tool invocation
//	recorder.RecordToolInvocation(ctx, "list_events_on_date", "success", time.Since(start))
package instrumentation
