package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/teemow/iris/internal/action"
	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/calendar"
	"github.com/teemow/iris/internal/config"
	"github.com/teemow/iris/internal/conversation"
	"github.com/teemow/iris/internal/google"
	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/llm"
	"github.com/teemow/iris/internal/logging"
)

// app is a fully wired assistant with the resources it owns.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	provider  *instrumentation.Provider
	store     *conversation.Store
	assistant *assistant.Assistant
	session   string
	db        *sql.DB

	closeOnce sync.Once
}

// appOptions vary between the chat and serve front ends.
type appOptions struct {
	confirmer assistant.Confirmer
	onReply   func(action.Record)
	// authIn and authOut run the OAuth consent flow when no token exists.
	// Without them a missing token is an error.
	authIn  io.Reader
	authOut io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.provider, err = instrumentation.NewProvider(ctx, cfg.Instrumentation(version))
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	metrics := a.provider.Metrics()

	model, err := llm.NewClient(cfg.LLM())
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	logger.Debug("Model client configured",
		logging.Provider(model.Name()),
		"model", cfg.Model.Name,
		"api_key", logging.SanitizeToken(cfg.Model.APIKey))

	httpClient, err := googleHTTPClient(ctx, cfg, opts.authIn, opts.authOut)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.NewClient(ctx, httpClient,
		calendar.WithCalendarID(cfg.Calendar.ID),
		calendar.WithLocation(cfg.Location()),
		calendar.WithMetrics(metrics),
		calendar.WithLogger(logging.WithService(logger, instrumentation.ServiceCalendar)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	persister, resume, err := a.openPersister(ctx)
	if err != nil {
		return nil, err
	}
	reset := cfg.Store.ResetOnStart && !resume
	a.store, err = openStore(ctx, persister, reset)
	if err != nil {
		return nil, err
	}

	assistantOpts := assistant.OptionsFromConfig(cfg)
	assistantOpts.Session = a.session
	assistantOpts.ResetOnStart = reset
	assistantOpts.Logger = logger
	assistantOpts.Metrics = metrics
	assistantOpts.Audit = a.provider.AuditLogger()
	assistantOpts.OnReply = opts.onReply

	a.assistant, err = assistant.New(llm.Instrument(model, metrics, logger), cal, a.store, opts.confirmer, assistantOpts)
	if err != nil {
		return nil, err
	}
	if err := a.assistant.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// openStore builds the conversation store. A store that is reset on start
// never reads the previous transcript, so an unreadable file is overwritten
// instead of blocking startup.
func openStore(ctx context.Context, p conversation.Persister, reset bool) (*conversation.Store, error) {
	if reset {
		return conversation.NewStore(p), nil
	}
	return conversation.Open(ctx, p)
}

// openPersister picks the transcript backend. resume is true when an
// existing SQLite session was named explicitly.
func (a *app) openPersister(ctx context.Context) (conversation.Persister, bool, error) {
	switch a.cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := conversation.OpenSQLiteDB(ctx, a.cfg.Store.Path)
		if err != nil {
			return nil, false, err
		}
		a.db = db
		a.session = a.cfg.Store.Session
		resume := a.session != ""
		if !resume {
			a.session = uuid.NewString()
		}
		store, err := conversation.NewSQLiteStore(db, a.session)
		if err != nil {
			return nil, false, err
		}
		a.logger.Debug("Using SQLite transcript", "path", a.cfg.Store.Path, logging.KeySession, a.session)
		return store, resume, nil
	default:
		a.session = uuid.NewString()
		return conversation.NewFileStore(a.cfg.Store.Path), false, nil
	}
}

// Close releases the database and flushes telemetry. Later calls do nothing.
func (a *app) Close(ctx context.Context) {
	a.closeOnce.Do(func() { a.close(ctx) })
}

func (a *app) close(ctx context.Context) {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close transcript database", logging.Err(err))
		}
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			a.logger.Warn("Failed to shut down instrumentation", logging.Err(err))
		}
	}
}

// googleHTTPClient returns an authorized client for the Calendar API. When
// no token is stored and in is set, the user is walked through consent.
func googleHTTPClient(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*http.Client, error) {
	conf, err := google.LoadOAuthConfig(cfg.Calendar.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tokens := google.NewFileTokenProvider(cfg.Calendar.TokenFile)

	if !tokens.HasToken() {
		if in == nil || out == nil {
			return nil, fmt.Errorf("no Google token at %s, run 'iris auth' first: %w", tokens.Path(), google.ErrNoToken)
		}
		if _, err := google.AuthorizeInteractive(ctx, conf, tokens, in, out); err != nil {
			return nil, fmt.Errorf("authorization failed: %w", err)
		}
	}

	client, err := google.GetHTTPClient(ctx, conf, tokens)
	if err != nil {
		if errors.Is(err, google.ErrNoToken) {
			return nil, fmt.Errorf("no Google token at %s, run 'iris auth' first: %w", tokens.Path(), err)
		}
		return nil, err
	}
	return client, nil
}
