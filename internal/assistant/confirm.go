package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// affirmatives are the only answers that allow a delete.
var affirmatives = map[string]bool{
	"y":           true,
	"yes":         true,
	"sure":        true,
	"affirmative": true,
}

// IsAffirmative reports whether answer is an exact, case-insensitive match
// for one of y, yes, sure or affirmative. Surrounding whitespace is ignored.
func IsAffirmative(answer string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(answer))]
}

// Confirmer asks the user a yes/no question and returns the raw answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (string, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (string, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StaticConfirmer answers every prompt the same way.
type StaticConfirmer bool

// Confirm returns "yes" or "no".
func (s StaticConfirmer) Confirm(_ context.Context, _ string) (string, error) {
	if s {
		return "yes", nil
	}
	return "no", nil
}

// LineConfirmer writes the prompt to Out and reads one line from In.
type LineConfirmer struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewLineConfirmer returns a LineConfirmer over in and out.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &LineConfirmer{In: br, Out: out}
}

// Confirm prints prompt and returns the next input line.
func (c *LineConfirmer) Confirm(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(c.Out, prompt); err != nil {
		return "", err
	}
	line, err := c.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
