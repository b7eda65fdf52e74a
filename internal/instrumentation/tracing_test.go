package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithSession("abc").
		WithAction("create").
		WithOutcome("parsed").
		WithEventID("evt-1").
		Build()

	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrSession] != "abc" {
		t.Errorf("expected session 'abc', got %v", attrMap[SpanAttrSession])
	}
	if attrMap[SpanAttrAction] != "create" {
		t.Errorf("expected action 'create', got %v", attrMap[SpanAttrAction])
	}
	if attrMap[SpanAttrOutcome] != "parsed" {
		t.Errorf("expected outcome 'parsed', got %v", attrMap[SpanAttrOutcome])
	}
	if attrMap[SpanAttrEventID] != "evt-1" {
		t.Errorf("expected event id 'evt-1', got %v", attrMap[SpanAttrEventID])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithSession("").
		WithEventID("").
		WithAction("list").
		Build()

	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute, got %d", len(attrs))
	}
}

func TestStartSpans(t *testing.T) {
	ctx := context.Background()

	turnCtx, turn := StartTurnSpan(ctx, "session-1")
	if turn == nil {
		t.Fatal("expected turn span to be non-nil")
	}

	_, llm := StartLLMSpan(turnCtx, "ollama", "gemma3:4b")
	if llm == nil {
		t.Fatal("expected llm span to be non-nil")
	}
	SetSpanSuccess(llm)
	llm.End()

	_, api := StartGoogleAPISpan(turnCtx, ServiceCalendar, OperationDelete)
	if api == nil {
		t.Fatal("expected api span to be non-nil")
	}
	SetSpanError(api, errors.New("boom"))
	SetSpanError(api, nil)
	AddSpanEvent(api, "retry")
	api.End()

	turn.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span id, got %q", id)
	}
}
