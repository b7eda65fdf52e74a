package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"json", FormatJSON, `"msg":"hello"`},
		{"text", FormatText, "msg=hello"},
		{"unknown falls back to text", "xml", "msg=hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, tt.format, false).Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("New(%q) output = %q, want substring %q", tt.format, buf.String(), tt.want)
			}
		})
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatText, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record emitted without debug mode: %q", buf.String())
	}

	New(&buf, FormatText, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug record missing in debug mode: %q", buf.String())
	}
}

func TestNewWithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithLevel(&buf, FormatText, slog.LevelWarn)
	logger.Info("quiet")
	logger.Warn("loud")

	if strings.Contains(buf.String(), "quiet") {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestWithHelpers(t *testing.T) {
	logger := slog.Default()
	if WithOperation(logger, "assistant.turn") == nil {
		t.Error("WithOperation returned nil")
	}
	if WithService(logger, "calendar") == nil {
		t.Error("WithService returned nil")
	}
	if WithSession(logger, "s-1") == nil {
		t.Error("WithSession returned nil")
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value string
	}{
		{"operation", Operation("turn"), KeyOperation, "turn"},
		{"provider", Provider("ollama"), KeyProvider, "ollama"},
		{"action", Action("delete"), KeyAction, "delete"},
		{"outcome", Outcome("fallback"), KeyOutcome, "fallback"},
		{"event id", EventID("evt1"), KeyEventID, "evt1"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value.String() != tt.value {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.value)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("dropped", "key", "value")
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestDigest(t *testing.T) {
	if Digest("") != "" {
		t.Error("Digest of empty text should be empty")
	}
	a := Digest("cancel my meeting")
	if !strings.HasPrefix(a, "text:") || len(a) != len("text:")+12 {
		t.Errorf("unexpected digest shape %q", a)
	}
	if a != Digest("cancel my meeting") {
		t.Error("Digest should be deterministic")
	}
	if a == Digest("cancel my lunch") {
		t.Error("different text should produce different digests")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"sk-a_very_long_key", "[token:18 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}
