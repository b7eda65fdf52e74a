// Package server holds the runtime state shared by the MCP tools and the
// operational HTTP endpoints of iris.
//
// ServerContext owns the assistant session served over MCP together with the
// instrumentation it reports to. HealthChecker exposes liveness and readiness
// probes, and MetricsServer serves them next to the Prometheus /metrics
// endpoint on a dedicated address.
package server
