package assistant

import (
	"context"

	"github.com/teemow/iris/internal/calendar"
)

// Calendar is the calendar backend the assistant drives.
// *calendar.Client satisfies it.
type Calendar interface {
	ListUpcoming(ctx context.Context, limit int) ([]calendar.EventSummary, error)
	Search(ctx context.Context, query string) ([]calendar.EventSummary, error)
	Create(ctx context.Context, summary, start, end string) (*calendar.EventSummary, error)
	Update(ctx context.Context, eventID, summary, start, end string) (*calendar.EventSummary, error)
	Delete(ctx context.Context, eventID string) error
}

var _ Calendar = (*calendar.Client)(nil)
