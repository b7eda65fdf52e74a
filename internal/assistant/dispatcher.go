package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/iris/internal/action"
	"github.com/teemow/iris/internal/calendar"
	"github.com/teemow/iris/internal/conversation"
	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/logging"
)

// Stage is how far a turn got through the dispatch pipeline.
type Stage string

const (
	StageReceived        Stage = "received"
	StageNormalized      Stage = "normalized"
	StageResolved        Stage = "resolved"
	StageConfirmIfNeeded Stage = "confirm_if_needed"
	StageExecuted        Stage = "executed"
	StagePersisted       Stage = "persisted"
)

// Notices shown to the user next to the model's reply.
const (
	NoticeNoUpdateMatch   = "No matching events found for update."
	NoticeNoDeleteMatch   = "No matching events found for deletion."
	NoticeDeleteCancelled = "Deletion cancelled."
)

// Outcome describes what the dispatcher did with an action record.
type Outcome struct {
	Action action.Kind
	Stage  Stage
	// Status is one of the instrumentation status values.
	Status  string
	Query   string
	Target  *calendar.EventSummary
	Event   *calendar.EventSummary
	Notices []string
}

func (o *Outcome) notice(msg string) {
	o.Notices = append(o.Notices, msg)
}

// Dispatcher executes normalized action records against the calendar and
// keeps the store's last action in step.
type Dispatcher struct {
	cal       Calendar
	store     *conversation.Store
	resolver  *Resolver
	confirmer Confirmer
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	logger    *slog.Logger
	session   string
	timeout   time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchMetrics records confirmation results.
func WithDispatchMetrics(m *instrumentation.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAuditLogger logs every calendar mutation.
func WithAuditLogger(a *instrumentation.AuditLogger) DispatcherOption {
	return func(d *Dispatcher) { d.audit = a }
}

// WithDispatchLogger sets the logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSession tags audit records with the session id.
func WithSession(session string) DispatcherOption {
	return func(d *Dispatcher) { d.session = session }
}

// WithCalendarTimeout bounds each calendar call. Zero means no bound.
func WithCalendarTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher creates a dispatcher. A nil confirmer declines every delete.
func NewDispatcher(cal Calendar, store *conversation.Store, confirmer Confirmer, opts ...DispatcherOption) *Dispatcher {
	if confirmer == nil {
		confirmer = StaticConfirmer(false)
	}
	d := &Dispatcher{
		cal:       cal,
		store:     store,
		resolver:  NewResolver(cal),
		confirmer: confirmer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs rec with the dispatcher's default confirmer.
func (d *Dispatcher) Dispatch(ctx context.Context, rec action.Record) (Outcome, error) {
	return d.DispatchWith(ctx, rec, d.confirmer)
}

// DispatchWith runs rec, asking confirmer before any delete. Calendar errors
// are returned as is and leave the last action untouched.
func (d *Dispatcher) DispatchWith(ctx context.Context, rec action.Record, confirmer Confirmer) (Outcome, error) {
	if confirmer == nil {
		confirmer = d.confirmer
	}
	out := Outcome{Action: rec.Action, Stage: StageNormalized, Status: instrumentation.StatusSuccess}

	switch rec.Action {
	case action.KindCreate:
		return d.create(ctx, rec, out)
	case action.KindUpdate:
		return d.update(ctx, rec, out)
	case action.KindDelete:
		return d.delete(ctx, rec, out, confirmer)
	default:
		return out, nil
	}
}

func (d *Dispatcher) create(ctx context.Context, rec action.Record, out Outcome) (Outcome, error) {
	out.Stage = StageResolved

	audit := d.mutation(ctx, instrumentation.OperationCreate).WithEvent("", rec.Summary)
	callCtx, cancel := d.callContext(ctx)
	event, err := d.cal.Create(callCtx, rec.Summary, rec.StartTime, rec.EndTime)
	cancel()
	if event != nil {
		audit.WithEvent(event.ID, event.Summary)
	}
	d.audit.LogMutation(audit.Complete(err))
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, fmt.Errorf("failed to create event: %w", err)
	}

	out.Stage = StageExecuted
	out.Event = event
	d.remember(ctx, rec)
	return out, nil
}

func (d *Dispatcher) update(ctx context.Context, rec action.Record, out Outcome) (Outcome, error) {
	res, err := d.resolve(ctx, rec, d.store.LastAction())
	out.Query = res.Query
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, err
	}
	out.Stage = StageResolved
	if !res.Found() {
		out.Status = instrumentation.StatusNoMatch
		out.notice(NoticeNoUpdateMatch)
		return out, nil
	}
	out.Target = res.Target

	audit := d.mutation(ctx, instrumentation.OperationUpdate).WithEvent(res.Target.ID, res.Target.Summary)
	callCtx, cancel := d.callContext(ctx)
	event, err := d.cal.Update(callCtx, res.Target.ID, rec.Summary, rec.StartTime, rec.EndTime)
	cancel()
	d.audit.LogMutation(audit.Complete(err))
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, fmt.Errorf("failed to update event %q: %w", res.Target.Summary, err)
	}

	out.Stage = StageExecuted
	out.Event = event
	d.remember(ctx, rec)
	return out, nil
}

func (d *Dispatcher) delete(ctx context.Context, rec action.Record, out Outcome, confirmer Confirmer) (Outcome, error) {
	res, err := d.resolve(ctx, rec, nil)
	out.Query = res.Query
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, err
	}
	out.Stage = StageResolved
	if !res.Found() {
		out.Status = instrumentation.StatusNoMatch
		out.notice(NoticeNoDeleteMatch)
		return out, nil
	}
	out.Target = res.Target

	out.Stage = StageConfirmIfNeeded
	answer, err := confirmer.Confirm(ctx, DeletePrompt(res.Target.Summary))
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, fmt.Errorf("failed to confirm deletion: %w", err)
	}
	if !IsAffirmative(answer) {
		d.metrics.RecordDeleteConfirmation(ctx, instrumentation.ConfirmDeclined)
		out.Status = instrumentation.StatusAborted
		out.notice(NoticeDeleteCancelled)
		return out, nil
	}
	d.metrics.RecordDeleteConfirmation(ctx, instrumentation.ConfirmAccepted)

	audit := d.mutation(ctx, instrumentation.OperationDelete).WithEvent(res.Target.ID, res.Target.Summary)
	callCtx, cancel := d.callContext(ctx)
	err = d.cal.Delete(callCtx, res.Target.ID)
	cancel()
	d.audit.LogMutation(audit.Complete(err))
	if err != nil {
		out.Status = instrumentation.StatusError
		return out, fmt.Errorf("failed to delete event %q: %w", res.Target.Summary, err)
	}

	out.Stage = StageExecuted
	out.Event = res.Target
	if err := d.store.ClearLastAction(ctx); err != nil {
		d.logger.Warn("Failed to persist cleared last action", logging.Err(err))
	}
	return out, nil
}

// DeletePrompt is the question asked before deleting an event.
func DeletePrompt(summary string) string {
	return fmt.Sprintf("Do you want to delete '%s'? (y/n): ", summary)
}

func (d *Dispatcher) resolve(ctx context.Context, rec action.Record, last *action.Record) (Resolution, error) {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	return d.resolver.Resolve(callCtx, rec, last)
}

// remember stores rec as the last action. The store keeps the value in
// memory even when persisting fails.
func (d *Dispatcher) remember(ctx context.Context, rec action.Record) {
	if err := d.store.SetLastAction(ctx, rec); err != nil {
		d.logger.Warn("Failed to persist last action",
			logging.Action(rec.Action.String()),
			logging.Err(err))
	}
}

func (d *Dispatcher) mutation(ctx context.Context, operation string) *instrumentation.CalendarMutation {
	return instrumentation.NewCalendarMutation(d.session, operation).WithSpanContext(ctx)
}

func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}
