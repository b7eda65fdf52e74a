package calendar

import (
	"errors"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// ErrInvalidTime is returned when an event time cannot be parsed.
var ErrInvalidTime = errors.New("invalid event time")

// EventSummary is the read-only view of a calendar event.
type EventSummary struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	AllDay   bool
	HTMLLink string
}

// Layouts accepted for event times, tried in order. Times without an offset
// are read in the client's time zone.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime parses an event time. Offset-less values are interpreted in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
}

func toEventSummary(event *calendar.Event, loc *time.Location) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		HTMLLink: event.HtmlLink,
	}
	if summary.Summary == "" {
		summary.Summary = "No title"
	}

	summary.Start, summary.AllDay = parseEventDateTime(event.Start, loc)
	summary.End, _ = parseEventDateTime(event.End, loc)

	return summary
}

// parseEventDateTime reports whether the value is an all-day date.
func parseEventDateTime(edt *calendar.EventDateTime, loc *time.Location) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, false
	}
	if edt.Date != "" {
		if loc == nil {
			loc = time.UTC
		}
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}, true
		}
		return t, true
	}
	return time.Time{}, false
}
