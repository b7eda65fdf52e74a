package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeCalendarAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	events   []*calendar.Event
	fail     bool
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"error":{"code":500,"message":"backend down"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
		_ = json.NewEncoder(w).Encode(&calendar.Events{Items: f.events})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
		var event calendar.Event
		_ = json.Unmarshal(body, &event)
		event.Id = "new-id"
		_ = json.NewEncoder(w).Encode(&event)
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/calendars/primary/events/"):
		_ = json.NewEncoder(w).Encode(&calendar.Event{
			Id:          "evt-1",
			Summary:     "Lunch with Sam",
			Description: "keep me",
			Start:       &calendar.EventDateTime{DateTime: "2025-09-02T12:00:00-06:00"},
			End:         &calendar.EventDateTime{DateTime: "2025-09-02T13:00:00-06:00"},
		})
	case r.Method == http.MethodPut:
		var event calendar.Event
		_ = json.Unmarshal(body, &event)
		_ = json.NewEncoder(w).Encode(&event)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeCalendarAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, api *fakeCalendarAPI) *Client {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	loc, err := time.LoadLocation("America/Edmonton")
	require.NoError(t, err)

	now := time.Date(2025, 9, 1, 9, 0, 0, 0, loc)
	client, err := NewClientWithOptions(context.Background(),
		[]option.ClientOption{option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL + "/")},
		WithLocation(loc),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return client
}

func sampleEvents() []*calendar.Event {
	return []*calendar.Event{
		{Id: "a", Summary: "Team Standup", Start: &calendar.EventDateTime{DateTime: "2025-09-02T09:00:00-06:00"}, End: &calendar.EventDateTime{DateTime: "2025-09-02T09:15:00-06:00"}},
		{Id: "b", Summary: "Lunch with Sam", Start: &calendar.EventDateTime{DateTime: "2025-09-02T12:00:00-06:00"}, End: &calendar.EventDateTime{DateTime: "2025-09-02T13:00:00-06:00"}},
		{Id: "c", Summary: "lunch WITH sam again", Start: &calendar.EventDateTime{DateTime: "2025-09-09T12:00:00-06:00"}, End: &calendar.EventDateTime{DateTime: "2025-09-09T13:00:00-06:00"}},
		{Id: "d", Start: &calendar.EventDateTime{Date: "2025-09-10"}, End: &calendar.EventDateTime{Date: "2025-09-11"}},
	}
}

func TestClient_ListUpcoming(t *testing.T) {
	api := &fakeCalendarAPI{events: sampleEvents()}
	client := newTestClient(t, api)

	events, err := client.ListUpcoming(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "a", events[0].ID)
	assert.False(t, events[0].AllDay)
	assert.Equal(t, "No title", events[3].Summary)
	assert.True(t, events[3].AllDay)

	req := api.last()
	assert.Contains(t, req.Query, "maxResults=10")
	assert.Contains(t, req.Query, "singleEvents=true")
	assert.Contains(t, req.Query, "orderBy=startTime")
	assert.Contains(t, req.Query, "timeMin=2025-09-01T09%3A00%3A00-06%3A00")
}

func TestClient_SearchIsCaseInsensitiveAndOrdered(t *testing.T) {
	api := &fakeCalendarAPI{events: sampleEvents()}
	client := newTestClient(t, api)

	events, err := client.Search(context.Background(), "Lunch With Sam")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "c", events[1].ID)

	none, err := client.Search(context.Background(), "dentist")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClient_Create(t *testing.T) {
	api := &fakeCalendarAPI{}
	client := newTestClient(t, api)

	created, err := client.Create(context.Background(), "Dentist", "2025-09-03T10:00:00-06:00", "2025-09-03T11:00:00-06:00")
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, "Dentist", created.Summary)

	var sent calendar.Event
	require.NoError(t, json.Unmarshal([]byte(api.last().Body), &sent))
	assert.Equal(t, "America/Edmonton", sent.Start.TimeZone)
	assert.Equal(t, "2025-09-03T10:00:00-06:00", sent.Start.DateTime)
}

func TestClient_CreateWithoutOffsetUsesLocation(t *testing.T) {
	api := &fakeCalendarAPI{}
	client := newTestClient(t, api)

	_, err := client.Create(context.Background(), "Gym", "2025-09-03T18:00:00", "2025-09-03T19:00")
	require.NoError(t, err)

	var sent calendar.Event
	require.NoError(t, json.Unmarshal([]byte(api.last().Body), &sent))
	assert.Equal(t, "2025-09-03T18:00:00-06:00", sent.Start.DateTime)
	assert.Equal(t, "2025-09-03T19:00:00-06:00", sent.End.DateTime)
}

func TestClient_CreateRejectsInvalidTime(t *testing.T) {
	api := &fakeCalendarAPI{}
	client := newTestClient(t, api)

	tests := []struct {
		name       string
		start, end string
	}{
		{"empty start", "", "2025-09-03T11:00:00-06:00"},
		{"garbage end", "2025-09-03T10:00:00-06:00", "tomorrow at 3"},
		{"end before start", "2025-09-03T10:00:00-06:00", "2025-09-03T09:00:00-06:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Create(context.Background(), "Dentist", tt.start, tt.end)
			assert.True(t, errors.Is(err, ErrInvalidTime), "got %v", err)
		})
	}
	assert.Empty(t, api.requests)
}

func TestClient_UpdateKeepsOtherFields(t *testing.T) {
	api := &fakeCalendarAPI{}
	client := newTestClient(t, api)

	updated, err := client.Update(context.Background(), "evt-1", "Lunch with Sam", "2025-09-02T13:00:00-06:00", "2025-09-02T14:00:00-06:00")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", updated.ID)

	req := api.last()
	assert.Equal(t, http.MethodPut, req.Method)

	var sent calendar.Event
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, "keep me", sent.Description)
	assert.Equal(t, "2025-09-02T13:00:00-06:00", sent.Start.DateTime)
}

func TestClient_Delete(t *testing.T) {
	api := &fakeCalendarAPI{}
	client := newTestClient(t, api)

	require.NoError(t, client.Delete(context.Background(), "evt-1"))

	req := api.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.True(t, strings.HasSuffix(req.Path, "/calendars/primary/events/evt-1"))
}

func TestClient_BackendFailure(t *testing.T) {
	api := &fakeCalendarAPI{fail: true}
	client := newTestClient(t, api)

	_, err := client.ListUpcoming(context.Background(), 5)
	assert.Error(t, err)

	err = client.Delete(context.Background(), "evt-1")
	assert.Error(t, err)
}

func TestToEventSummary_Nil(t *testing.T) {
	summary := toEventSummary(nil, time.UTC)
	assert.Empty(t, summary.ID)
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("MDT", -6*3600)

	got, err := ParseTime("2025-09-02T11:00:00-06:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Hour())

	got, err = ParseTime("2025-09-02T11:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	got, err = ParseTime("2025-09-02 11:30", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())

	_, err = ParseTime("next tuesday", loc)
	assert.ErrorIs(t, err, ErrInvalidTime)
}
