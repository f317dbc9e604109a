package instrumentation

// Cardinality management for metrics.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Metric labels must stay bounded: operation and tool names come from
// closed sets, and per-event identifiers or titles never become labels.

// Common operation types for Calendar API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationCheck    = "check"
	OperationTimezone = "timezone"
)
