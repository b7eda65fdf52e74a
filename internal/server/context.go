package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	assistant *assistant.Assistant
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	logger    *slog.Logger
	mu        sync.RWMutex
	shutdown  bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithInstrumentation takes metrics and the audit logger from provider.
func WithInstrumentation(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) {
		if provider == nil {
			return
		}
		sc.metrics = provider.Metrics()
		sc.audit = provider.AuditLogger()
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context around a.
func NewServerContext(ctx context.Context, a *assistant.Assistant, opts ...Option) (*ServerContext, error) {
	if a == nil {
		return nil, errors.New("assistant is required")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		assistant: a,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Assistant returns the assistant session.
func (sc *ServerContext) Assistant() *assistant.Assistant {
	return sc.assistant
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when instrumentation is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
