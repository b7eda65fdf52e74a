package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/iris/internal/action"
	"github.com/teemow/iris/internal/calendar"
)

// Resolution is the result of looking up the event an action refers to.
type Resolution struct {
	// Query is the text searched for. Empty when no search was made.
	Query string
	// Target is the chosen event, or nil when nothing matched.
	Target *calendar.EventSummary
	// Candidates is the number of events that matched Query.
	Candidates int
}

// Found reports whether a target event was resolved.
func (r Resolution) Found() bool {
	return r.Target != nil
}

// Resolver maps update and delete records to a concrete calendar event.
type Resolver struct {
	cal Calendar
}

// NewResolver returns a resolver over cal.
func NewResolver(cal Calendar) *Resolver {
	return &Resolver{cal: cal}
}

// SearchQuery returns the text to search for. Delete uses the record's own
// summary; update uses the summary of the last action. ok is false when
// there is nothing to search for.
func SearchQuery(rec action.Record, last *action.Record) (query string, ok bool) {
	switch rec.Action {
	case action.KindDelete:
		query = rec.Summary
	case action.KindUpdate:
		if last == nil {
			return "", false
		}
		query = last.Summary
	default:
		return "", false
	}
	query = strings.TrimSpace(query)
	return query, query != ""
}

// Resolve finds the event rec refers to. A miss is not an error: the returned
// Resolution has no Target. Errors come only from the calendar.
func (r *Resolver) Resolve(ctx context.Context, rec action.Record, last *action.Record) (Resolution, error) {
	query, ok := SearchQuery(rec, last)
	if !ok {
		return Resolution{}, nil
	}

	candidates, err := r.cal.Search(ctx, query)
	if err != nil {
		return Resolution{Query: query}, fmt.Errorf("failed to search for %q: %w", query, err)
	}

	res := Resolution{Query: query, Candidates: len(candidates)}
	if len(candidates) == 0 {
		return res, nil
	}

	// Earliest start wins; ties keep the calendar's order.
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Start.Before(candidates[best].Start) {
			best = i
		}
	}
	target := candidates[best]
	res.Target = &target
	return res, nil
}
