// Package infrastructure wires process-wide logging and tracing.
//
// Logs are JSON records from log/slog; a wrapping handler copies the run's
// trace ID from the context into each record. Tracing uses OpenTelemetry
// with a stdout exporter and is a no-op unless enabled in configuration.
package infrastructure
