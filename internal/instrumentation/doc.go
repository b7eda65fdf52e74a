// Package instrumentation provides OpenTelemetry instrumentation for the iris
// calendar assistant.
//
// This package enables observability through:
//   - OpenTelemetry metrics for conversation turns, model calls and Google Calendar calls
//   - Distributed tracing for turn flows and collaborator calls
//   - Prometheus metrics export via a /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Assistant Metrics:
//   - assistant_turns_total: Counter of turns by action and status
//   - assistant_turn_duration_seconds: Histogram of end-to-end turn durations
//   - normalizer_outcomes_total: Counter of model replies by normalization outcome
//   - delete_confirmations_total: Counter of delete confirmations by result
//
// Language Model Metrics:
//   - llm_requests_total: Counter of model requests by provider and status
//   - llm_request_duration_seconds: Histogram of model request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// MCP Metrics:
//   - mcp_tool_invocations_total: Counter of tool calls by tool and status
//   - mcp_tool_duration_seconds: Histogram of tool call durations
//
// # Tracing
//
// Spans are created for:
//   - Conversation turns (assistant.turn)
//   - Model calls (llm.complete)
//   - Google API calls (google.<service>.<operation>)
//   - MCP tool calls (mcp.<tool>)
//
// # Configuration
//
// Config is a plain struct. The config package fills it from the telemetry
// section of iris.yaml, IRIS_TELEMETRY_* variables, or the conventional
// INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER,
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG and OTEL_SERVICE_NAME.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordTurn(ctx, "create", instrumentation.StatusSuccess, time.Since(start))
//	recorder.RecordGoogleAPIOperation(ctx, "calendar", "list", "success", time.Since(start))
package instrumentation
