package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestCalendarMutation_Complete(t *testing.T) {
	cm := NewCalendarMutation("s1", OperationDelete).
		WithEvent("evt-1", "Lunch with Sam").
		WithSpanContext(context.Background()).
		Complete(nil)

	if !cm.Success {
		t.Error("expected success")
	}
	if cm.Status() != StatusSuccess {
		t.Errorf("expected status success, got %q", cm.Status())
	}

	failed := NewCalendarMutation("s1", OperationUpdate).Complete(errors.New("quota"))
	if failed.Success {
		t.Error("expected failure")
	}
	if failed.Error != "quota" {
		t.Errorf("expected error 'quota', got %q", failed.Error)
	}
	if failed.Status() != StatusError {
		t.Errorf("expected status error, got %q", failed.Status())
	}
}

func TestAuditLogger_LogMutation_OmitsSummaries(t *testing.T) {
	logger, buf := newBufferLogger()
	audit := NewAuditLogger(logger)

	audit.LogMutation(NewCalendarMutation("s1", OperationCreate).
		WithEvent("evt-1", "Dentist").
		Complete(nil))

	out := buf.String()
	if !strings.Contains(out, "calendar_mutation") {
		t.Errorf("expected calendar_mutation message, got %s", out)
	}
	if !strings.Contains(out, "evt-1") {
		t.Errorf("expected event id in output, got %s", out)
	}
	if strings.Contains(out, "Dentist") {
		t.Errorf("expected summary to be omitted, got %s", out)
	}
}

func TestAuditLogger_LogMutation_IncludesSummaries(t *testing.T) {
	logger, buf := newBufferLogger()
	audit := NewAuditLoggerWithConfig(logger, AuditConfig{Enabled: true, IncludeSummaries: true})

	audit.LogMutation(NewCalendarMutation("s1", OperationDelete).
		WithEvent("evt-2", "Dentist").
		Complete(errors.New("not found")))

	out := buf.String()
	if !strings.Contains(out, "calendar_mutation_failed") {
		t.Errorf("expected failure message, got %s", out)
	}
	if !strings.Contains(out, "Dentist") {
		t.Errorf("expected summary in output, got %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("expected WARN level for failed mutation, got %s", out)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	logger, buf := newBufferLogger()
	audit := NewAuditLoggerWithConfig(logger, AuditConfig{Enabled: false})

	audit.LogMutation(NewCalendarMutation("s1", OperationCreate).Complete(nil))
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %s", buf.String())
	}

	audit.SetEnabled(true)
	audit.LogMutation(NewCalendarMutation("s1", OperationCreate).Complete(nil))
	if buf.Len() == 0 {
		t.Error("expected output after enabling")
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var audit *AuditLogger
	audit.LogMutation(NewCalendarMutation("s1", OperationCreate).Complete(nil))

	NewAuditLogger(nil).LogMutation(nil)
}
