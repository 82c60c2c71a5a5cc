// Package telemetry groups the observability subsystems: structured
// logging, Prometheus metrics, and health probes.
//
// Subpackages:
//   - logging: log/slog setup with a runtime-adjustable level
//   - metrics: Prometheus collectors and the /metrics handler
//   - health: liveness and readiness probes
package telemetry
