package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/logging"
)

// DefaultCalendarID is the calendar used when none is configured.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service.
type Client struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithCalendarID selects the calendar to operate on.
func WithCalendarID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.calendarID = id
		}
	}
}

// WithLocation sets the time zone events are written in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithMetrics records Google API metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for "upcoming".
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a Calendar client over an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	return NewClientWithOptions(ctx, []option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
}

// NewClientWithOptions creates a Calendar client from raw API client options.
func NewClientWithOptions(ctx context.Context, apiOpts []option.ClientOption, opts ...Option) (*Client, error) {
	svc, err := calendar.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	c := &Client{
		svc:        svc,
		calendarID: DefaultCalendarID,
		loc:        time.UTC,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceCalendar)
	return c, nil
}

// Location returns the time zone events are written in.
func (c *Client) Location() *time.Location {
	return c.loc
}

// ListUpcoming lists up to limit events starting from now, earliest first.
func (c *Client) ListUpcoming(ctx context.Context, limit int) (events []EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList)
	defer func() { done(err) }()

	call := c.upcomingCall(ctx)
	if limit > 0 {
		call = call.MaxResults(int64(limit))
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events = make([]EventSummary, 0, len(result.Items))
	for _, event := range result.Items {
		events = append(events, toEventSummary(event, c.loc))
	}
	return events, nil
}

// Search returns upcoming events whose title contains query, ignoring case,
// earliest first.
func (c *Client) Search(ctx context.Context, query string) (events []EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationSearch)
	defer func() { done(err) }()

	needle := strings.ToLower(query)
	err = c.upcomingCall(ctx).Pages(ctx, func(page *calendar.Events) error {
		for _, event := range page.Items {
			if strings.Contains(strings.ToLower(event.Summary), needle) {
				events = append(events, toEventSummary(event, c.loc))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return events, nil
}

// Create creates a timed event.
func (c *Client) Create(ctx context.Context, summary, start, end string) (_ *EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationCreate)
	defer func() { done(err) }()

	startDT, endDT, err := c.eventTimes(start, end)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary: summary,
		Start:   startDT,
		End:     endDT,
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := toEventSummary(created, c.loc)
	c.logger.Info("event created", logging.EventID(result.ID))
	return &result, nil
}

// Update replaces the title and times of an existing event.
func (c *Client) Update(ctx context.Context, eventID, summary, start, end string) (_ *EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationUpdate)
	defer func() { done(err) }()

	startDT, endDT, err := c.eventTimes(start, end)
	if err != nil {
		return nil, err
	}

	// Get the existing event first
	existing, err := c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if summary != "" {
		existing.Summary = summary
	}
	existing.Start = startDT
	existing.End = endDT

	updated, err := c.svc.Events.Update(c.calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	result := toEventSummary(updated, c.loc)
	c.logger.Info("event updated", logging.EventID(result.ID))
	return &result, nil
}

// Delete deletes an event.
func (c *Client) Delete(ctx context.Context, eventID string) (err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationDelete)
	defer func() { done(err) }()

	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	c.logger.Info("event deleted", logging.EventID(eventID))
	return nil
}

func (c *Client) upcomingCall(ctx context.Context) *calendar.EventsListCall {
	return c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
}

func (c *Client) eventTimes(start, end string) (*calendar.EventDateTime, *calendar.EventDateTime, error) {
	startTime, err := ParseTime(start, c.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("start_time: %w", err)
	}
	endTime, err := ParseTime(end, c.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("end_time: %w", err)
	}
	if endTime.Before(startTime) {
		return nil, nil, fmt.Errorf("%w: end_time %s is before start_time %s", ErrInvalidTime, end, start)
	}

	tz := c.loc.String()
	return &calendar.EventDateTime{DateTime: startTime.Format(time.RFC3339), TimeZone: tz},
		&calendar.EventDateTime{DateTime: endTime.Format(time.RFC3339), TimeZone: tz},
		nil
}

// observe starts a span for operation and returns a function that records
// its outcome.
func (c *Client) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation)

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			c.logger.Debug("calendar call failed",
				logging.Operation(operation), logging.Err(err))
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	}
}
