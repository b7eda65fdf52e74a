package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// CalendarMutation captures one write against the calendar for audit logging.
//
// # Privacy Considerations
//
// Summary holds the event title, which is user content. It is only emitted
// when the audit logger is configured with IncludeSummaries.
type CalendarMutation struct {
	// Session the mutation was made from
	Session string

	// Operation type (create, update, delete)
	Operation string

	// Target event
	EventID string
	Summary string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewCalendarMutation creates a new CalendarMutation with timing started.
// Call Complete() when the calendar operation finishes.
func NewCalendarMutation(session, operation string) *CalendarMutation {
	return &CalendarMutation{
		Session:   session,
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithEvent sets the target event.
func (cm *CalendarMutation) WithEvent(id, summary string) *CalendarMutation {
	cm.EventID = id
	cm.Summary = summary
	return cm
}

// WithSpanContext extracts trace context from the current span.
func (cm *CalendarMutation) WithSpanContext(ctx context.Context) *CalendarMutation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		cm.TraceID = span.SpanContext().TraceID().String()
		cm.SpanID = span.SpanContext().SpanID().String()
	}
	return cm
}

// Complete marks the mutation as finished and calculates duration.
func (cm *CalendarMutation) Complete(err error) *CalendarMutation {
	cm.Duration = time.Since(cm.StartTime)
	cm.Success = err == nil
	if err != nil {
		cm.Error = err.Error()
	}
	return cm
}

// Status returns "success" or "error" based on the Success field.
func (cm *CalendarMutation) Status() string {
	if cm.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
func (cm *CalendarMutation) LogAttrs(includeSummary bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", cm.Operation),
		slog.Duration("duration", cm.Duration),
		slog.Bool("success", cm.Success),
	}

	if cm.Session != "" {
		attrs = append(attrs, slog.String("session", cm.Session))
	}
	if cm.EventID != "" {
		attrs = append(attrs, slog.String("event_id", cm.EventID))
	}
	if includeSummary && cm.Summary != "" {
		attrs = append(attrs, slog.String("summary", cm.Summary))
	}
	if cm.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", cm.TraceID))
	}
	if cm.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", cm.SpanID))
	}
	if cm.Error != "" {
		attrs = append(attrs, slog.String("error", cm.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for calendar mutations.
type AuditLogger struct {
	logger           *slog.Logger
	includeSummaries bool
	enabled          bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// Event titles are not logged by default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
// A nil logger resolves to slog.Default() at log time.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditConfig) *AuditLogger {
	return &AuditLogger{
		logger:           logger,
		includeSummaries: config.IncludeSummaries,
		enabled:          config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogMutation writes one audit record for a calendar mutation.
func (al *AuditLogger) LogMutation(cm *CalendarMutation) {
	if al == nil || !al.enabled || cm == nil {
		return
	}

	logger := al.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := cm.LogAttrs(al.includeSummaries)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if cm.Success {
		logger.Info("calendar_mutation", args...)
	} else {
		logger.Warn("calendar_mutation_failed", args...)
	}
}
