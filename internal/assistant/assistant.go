package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/iris/internal/action"
	"github.com/teemow/iris/internal/calendar"
	"github.com/teemow/iris/internal/config"
	"github.com/teemow/iris/internal/conversation"
	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/llm"
	"github.com/teemow/iris/internal/logging"
)

// DefaultUpcomingLimit is how many upcoming events go into the prompt.
const DefaultUpcomingLimit = 10

// ModelError reports that the language model could not be reached or
// returned an error. The turn still completes with a chat reply.
type ModelError struct {
	Provider string
	Err      error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s failed: %v", e.Provider, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	Record action.Record
	// Reply is the assistant's reply, already appended to the transcript.
	Reply         string
	Notices       []string
	Normalization action.Outcome
	// ModelFailed is set when the model call itself failed; ModelErr holds why.
	ModelFailed bool
	ModelErr    *ModelError
	Outcome     Outcome
	Duration    time.Duration
}

// Options configures an Assistant.
type Options struct {
	AssistantName string
	UserName      string
	Location      *time.Location

	Model       string
	Temperature float64
	MaxTokens   int

	UpcomingLimit   int
	ModelTimeout    time.Duration
	CalendarTimeout time.Duration
	ResetOnStart    bool
	Session         string

	// OnReply, when set, is called with the normalized record before it is
	// dispatched, so a front end can show the reply ahead of a confirmation.
	OnReply func(action.Record)

	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AssistantName:   cfg.AssistantName,
		UserName:        cfg.UserName,
		Location:        cfg.Location(),
		Model:           cfg.Model.Name,
		Temperature:     cfg.Model.Temperature,
		MaxTokens:       cfg.Model.MaxTokens,
		UpcomingLimit:   cfg.Calendar.UpcomingLimit,
		ModelTimeout:    cfg.Timeouts.Model,
		CalendarTimeout: cfg.Timeouts.Calendar,
		ResetOnStart:    cfg.Store.ResetOnStart,
		Session:         cfg.Store.Session,
	}
}

// Assistant runs conversation turns.
type Assistant struct {
	mu sync.Mutex

	model      llm.Client
	cal        Calendar
	store      *conversation.Store
	normalizer *action.Normalizer
	dispatcher *Dispatcher
	opts       Options
	logger     *slog.Logger
}

// New wires an assistant. confirmer is used for deletes unless a turn
// supplies its own.
func New(model llm.Client, cal Calendar, store *conversation.Store, confirmer Confirmer, opts Options) (*Assistant, error) {
	if model == nil {
		return nil, errors.New("model client is required")
	}
	if cal == nil {
		return nil, errors.New("calendar is required")
	}
	if store == nil {
		return nil, errors.New("conversation store is required")
	}

	normalizer, err := action.NewNormalizer()
	if err != nil {
		return nil, err
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.UpcomingLimit <= 0 {
		opts.UpcomingLimit = DefaultUpcomingLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Session != "" {
		logger = logging.WithSession(logger, opts.Session)
	}

	return &Assistant{
		model:      model,
		cal:        cal,
		store:      store,
		normalizer: normalizer,
		dispatcher: NewDispatcher(cal, store, confirmer,
			WithDispatchMetrics(opts.Metrics),
			WithAuditLogger(opts.Audit),
			WithDispatchLogger(logger),
			WithSession(opts.Session),
			WithCalendarTimeout(opts.CalendarTimeout),
		),
		opts:   opts,
		logger: logger,
	}, nil
}

// Store returns the conversation store.
func (a *Assistant) Store() *conversation.Store {
	return a.store
}

// Start prepares a session. With ResetOnStart the transcript and last action
// are wiped, otherwise the loaded conversation is resumed.
func (a *Assistant) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.opts.ResetOnStart {
		a.logger.Info("Resuming conversation", "turns", a.store.Len())
		return nil
	}
	if err := a.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}
	a.logger.Debug("Conversation reset")
	return nil
}

// Turn runs one conversation turn with the default confirmer.
func (a *Assistant) Turn(ctx context.Context, text string) (TurnResult, error) {
	return a.TurnWithConfirmer(ctx, text, nil)
}

// TurnWithConfirmer runs one conversation turn. A nil confirmer uses the
// assistant's default. The reply is appended to the transcript whatever
// happens in dispatch; the returned error is the dispatch error, if any.
func (a *Assistant) TurnWithConfirmer(ctx context.Context, text string, confirmer Confirmer) (TurnResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	started := a.opts.Now()
	ctx, span := instrumentation.StartTurnSpan(ctx, a.opts.Session)
	defer span.End()

	var result TurnResult
	result.Outcome.Stage = StageReceived

	if err := a.store.Append(ctx, conversation.UserTurn(text)); err != nil {
		a.logger.Warn("Failed to persist user turn", logging.Err(err))
	}

	events, err := a.upcoming(ctx)
	if err != nil {
		result.Record = action.Chat("Error: " + err.Error())
		result.Reply = result.Record.Reply
		result.Outcome.Status = instrumentation.StatusError
		a.finish(ctx, &result, started, true)
		instrumentation.SetSpanError(span, err)
		return result, err
	}

	raw, modelErr := a.complete(ctx, events)
	if modelErr != nil {
		result.ModelFailed = true
		result.ModelErr = modelErr
		result.Record = action.Chat("Error: " + modelErr.Err.Error())
		a.logger.Error("Model request failed",
			logging.Provider(modelErr.Provider),
			logging.Err(modelErr.Err))
	} else {
		norm := a.normalizer.Normalize(raw)
		result.Record = norm.Record
		result.Normalization = norm.Outcome
		a.opts.Metrics.RecordNormalizerOutcome(ctx, string(norm.Outcome))
		if norm.Err != nil {
			a.logger.Debug("Model reply was not an action record",
				logging.Outcome(string(norm.Outcome)),
				logging.Err(norm.Err))
		}
	}
	result.Reply = result.Record.Reply

	if a.opts.OnReply != nil {
		a.opts.OnReply(result.Record)
	}

	out, dispatchErr := a.dispatcher.DispatchWith(ctx, result.Record, confirmer)
	result.Outcome = out
	result.Notices = out.Notices
	if result.ModelFailed {
		result.Outcome.Status = instrumentation.StatusError
	}

	a.finish(ctx, &result, started, dispatchErr != nil)

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithAction(result.Record.Action.String()).
		WithOutcome(string(result.Normalization)).
		Build()...)
	if dispatchErr != nil {
		instrumentation.SetSpanError(span, dispatchErr)
		a.logger.Error("Action failed",
			logging.Action(result.Record.Action.String()),
			logging.Err(dispatchErr))
		return result, dispatchErr
	}
	instrumentation.SetSpanSuccess(span)
	return result, nil
}

// finish appends the reply, records the turn metric and logs the outcome.
// The stage only advances to persisted when nothing failed before it.
func (a *Assistant) finish(ctx context.Context, result *TurnResult, started time.Time, failed bool) {
	if err := a.store.Append(ctx, conversation.AssistantTurn(result.Reply)); err != nil {
		a.logger.Warn("Failed to persist assistant turn", logging.Err(err))
	} else if !failed {
		result.Outcome.Stage = StagePersisted
	}

	result.Duration = a.opts.Now().Sub(started)
	kind := result.Record.Action.String()
	a.opts.Metrics.RecordTurn(ctx, kind, result.Outcome.Status, result.Duration)
	a.logger.Info("Turn completed",
		logging.Action(kind),
		logging.Outcome(string(result.Normalization)),
		logging.Status(result.Outcome.Status),
		slog.String("stage", string(result.Outcome.Stage)),
		slog.Duration(logging.KeyDuration, result.Duration))
}

func (a *Assistant) upcoming(ctx context.Context) ([]calendar.EventSummary, error) {
	if a.opts.CalendarTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.CalendarTimeout)
		defer cancel()
	}
	events, err := a.cal.ListUpcoming(ctx, a.opts.UpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

func (a *Assistant) complete(ctx context.Context, events []calendar.EventSummary) (string, *ModelError) {
	prompt := BuildSystemPrompt(PromptData{
		AssistantName: a.opts.AssistantName,
		UserName:      a.opts.UserName,
		Now:           a.opts.Now(),
		Location:      a.opts.Location,
		Events:        events,
	})

	turns := a.store.Snapshot().Turns
	messages := make([]llm.ChatMessage, 0, len(turns)+1)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: prompt})
	for _, t := range turns {
		messages = append(messages, llm.ChatMessage{Role: string(t.Role), Content: t.Content})
	}

	if a.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.ModelTimeout)
		defer cancel()
	}

	resp, err := a.model.Complete(ctx, &llm.CompletionRequest{
		Model:       a.opts.Model,
		Messages:    messages,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
		JSON:        true,
	})
	if err != nil {
		return "", &ModelError{Provider: a.model.Name(), Err: err}
	}
	return resp.Content, nil
}
