package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/iris/internal/logging"
)

type stubClient struct {
	resp  *CompletionResponse
	err   error
	calls int
}

func (s *stubClient) Complete(_ context.Context, _ *CompletionRequest) (*CompletionResponse, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubClient) Name() string { return "stub" }

func TestInstrumentedClient_PassesThrough(t *testing.T) {
	stub := &stubClient{resp: &CompletionResponse{Content: "ok"}}
	c := Instrument(stub, nil, logging.Discard())

	resp, err := c.Complete(context.Background(), &CompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "stub", c.Name())
	assert.Equal(t, 1, stub.calls)
}

func TestInstrumentedClient_PropagatesError(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	c := Instrument(stub, nil, nil)

	_, err := c.Complete(context.Background(), &CompletionRequest{Model: "m"})
	assert.EqualError(t, err, "connection refused")
}
