package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/logging"
)

// InstrumentedClient records metrics, a span and a debug log line for every
// completion made through the wrapped client.
type InstrumentedClient struct {
	next    Client
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// Instrument wraps c. Nil metrics or logger are allowed.
func Instrument(c Client, metrics *instrumentation.Metrics, logger *slog.Logger) *InstrumentedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstrumentedClient{
		next:    c,
		metrics: metrics,
		logger:  logger.With(logging.Provider(c.Name())),
	}
}

// Name returns the wrapped provider name.
func (c *InstrumentedClient) Name() string {
	return c.next.Name()
}

// Complete forwards to the wrapped client.
func (c *InstrumentedClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	ctx, span := instrumentation.StartLLMSpan(ctx, c.next.Name(), req.Model)
	defer span.End()

	resp, err := c.next.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordLLMRequest(ctx, c.next.Name(), instrumentation.StatusError, duration)
		c.logger.Warn("model request failed",
			slog.String("model", req.Model),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordLLMRequest(ctx, c.next.Name(), instrumentation.StatusSuccess, duration)
	c.logger.Debug("model request completed",
		slog.String("model", req.Model),
		slog.Int("messages", len(req.Messages)),
		slog.Int("tokens_in", resp.TokensIn),
		slog.Int("tokens_out", resp.TokensOut),
		slog.Duration(logging.KeyDuration, duration),
		slog.String("reply_digest", logging.Digest(resp.Content)))
	return resp, nil
}
