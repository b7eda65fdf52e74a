package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrAction    = "action"
	attrOutcome   = "outcome"
	attrProvider  = "provider"
	attrTool      = "tool"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a valid no-op recorder.
type Metrics struct {
	// Turn metrics
	turnsTotal   metric.Int64Counter
	turnDuration metric.Float64Histogram

	// Normalizer and confirmation metrics
	normalizerOutcomesTotal  metric.Int64Counter
	deleteConfirmationsTotal metric.Int64Counter

	// Language model metrics
	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.turnsTotal, err = meter.Int64Counter(
		"assistant_turns_total",
		metric.WithDescription("Total number of conversation turns"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_turns_total counter: %w", err)
	}

	m.turnDuration, err = meter.Float64Histogram(
		"assistant_turn_duration_seconds",
		metric.WithDescription("End-to-end conversation turn duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_turn_duration_seconds histogram: %w", err)
	}

	m.normalizerOutcomesTotal, err = meter.Int64Counter(
		"normalizer_outcomes_total",
		metric.WithDescription("Total number of model replies by normalization outcome"),
		metric.WithUnit("{reply}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer_outcomes_total counter: %w", err)
	}

	m.deleteConfirmationsTotal, err = meter.Int64Counter(
		"delete_confirmations_total",
		metric.WithDescription("Total number of delete confirmation prompts by result"),
		metric.WithUnit("{prompt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delete_confirmations_total counter: %w", err)
	}

	m.llmRequestsTotal, err = meter.Int64Counter(
		"llm_requests_total",
		metric.WithDescription("Total number of language model requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_requests_total counter: %w", err)
	}

	m.llmRequestDuration, err = meter.Float64Histogram(
		"llm_request_duration_seconds",
		metric.WithDescription("Language model request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_request_duration_seconds histogram: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordTurn records one completed conversation turn.
//
// Parameters:
//   - action: dispatched action kind (create, update, delete, list, chat)
//   - status: success, error, no_match or aborted
//   - duration: time from user input to persisted reply
func (m *Metrics) RecordTurn(ctx context.Context, action, status string, duration time.Duration) {
	if m == nil || m.turnsTotal == nil || m.turnDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrAction, NormalizeLabel(action)),
		attribute.String(attrStatus, status),
	}

	m.turnsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.turnDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordNormalizerOutcome records how a model reply was turned into an action record.
func (m *Metrics) RecordNormalizerOutcome(ctx context.Context, outcome string) {
	if m == nil || m.normalizerOutcomesTotal == nil {
		return
	}

	m.normalizerOutcomesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// RecordDeleteConfirmation records the answer to a delete confirmation prompt.
// Result should be one of: "accepted", "declined"
func (m *Metrics) RecordDeleteConfirmation(ctx context.Context, result string) {
	if m == nil || m.deleteConfirmationsTotal == nil {
		return
	}

	m.deleteConfirmationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordLLMRequest records a language model request with provider, status, and duration.
func (m *Metrics) RecordLLMRequest(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil || m.llmRequestsTotal == nil || m.llmRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, NormalizeLabel(provider)),
		attribute.String(attrStatus, status),
	}

	m.llmRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.llmRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar)
//   - operation: Operation type (list, search, get, create, update, delete)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool call with its status and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
