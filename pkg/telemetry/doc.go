// Package telemetry groups the observability packages of camkeep.
//
//   - logging: log/slog setup with run-scoped fields
//   - metrics: Prometheus metrics for retention runs
//   - tracing: OpenTelemetry spans around runs and phases
//   - health: liveness and readiness endpoints for "camkeep serve"
package telemetry
