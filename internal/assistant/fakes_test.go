package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/teemow/iris/internal/calendar"
	"github.com/teemow/iris/internal/llm"
)

var edmonton = mustLocation("America/Edmonton")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func at(hour, minute int, day int) time.Time {
	return time.Date(2025, time.September, day, hour, minute, 0, 0, edmonton)
}

type fakeCalendar struct {
	mu      sync.Mutex
	events  []calendar.EventSummary
	calls   []string
	err     error
	listErr error
	nextID  int
}

func (f *fakeCalendar) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCalendar) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCalendar) ListUpcoming(_ context.Context, limit int) ([]calendar.EventSummary, error) {
	f.record(fmt.Sprintf("list:%d", limit))
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]calendar.EventSummary(nil), f.events...), nil
}

func (f *fakeCalendar) Search(_ context.Context, query string) ([]calendar.EventSummary, error) {
	f.record("search:" + query)
	if f.err != nil {
		return nil, f.err
	}
	var out []calendar.EventSummary
	for _, ev := range f.events {
		if strings.Contains(strings.ToLower(ev.Summary), strings.ToLower(query)) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeCalendar) Create(_ context.Context, summary, start, end string) (*calendar.EventSummary, error) {
	f.record("create:" + summary)
	if f.err != nil {
		return nil, f.err
	}
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return nil, calendar.ErrInvalidTime
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return nil, calendar.ErrInvalidTime
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev := calendar.EventSummary{ID: fmt.Sprintf("new-%d", f.nextID), Summary: summary, Start: s, End: e}
	f.events = append(f.events, ev)
	return &ev, nil
}

func (f *fakeCalendar) Update(_ context.Context, id, summary, _, _ string) (*calendar.EventSummary, error) {
	f.record("update:" + id + ":" + summary)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Summary = summary
			ev := f.events[i]
			return &ev, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeCalendar) Delete(_ context.Context, id string) error {
	f.record("delete:" + id)
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

// fakeModel returns scripted replies in order and records every request.
type fakeModel struct {
	replies  []string
	err      error
	requests []*llm.CompletionRequest
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return &llm.CompletionResponse{Content: ""}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return &llm.CompletionResponse{Content: reply}, nil
}

// recordingConfirmer answers with a fixed string and remembers the prompts.
type recordingConfirmer struct {
	answer  string
	err     error
	prompts []string
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}
