package assistant

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAffirmative(t *testing.T) {
	tests := map[string]bool{
		"y":            true,
		"Y":            true,
		"yes":          true,
		" YES \n":      true,
		"sure":         true,
		"Affirmative":  true,
		"yeah":         false,
		"yes please":   false,
		"ok":           false,
		"n":            false,
		"":             false,
		"no":           false,
		"y es":         false,
		"affirmatives": false,
	}
	for answer, want := range tests {
		assert.Equal(t, want, IsAffirmative(answer), "answer %q", answer)
	}
}

func TestStaticConfirmer(t *testing.T) {
	ctx := context.Background()

	yes, err := StaticConfirmer(true).Confirm(ctx, "?")
	require.NoError(t, err)
	assert.True(t, IsAffirmative(yes))

	no, err := StaticConfirmer(false).Confirm(ctx, "?")
	require.NoError(t, err)
	assert.False(t, IsAffirmative(no))
}

func TestLineConfirmer(t *testing.T) {
	var out bytes.Buffer
	c := NewLineConfirmer(strings.NewReader("yes\r\nno\n"), &out)

	answer, err := c.Confirm(context.Background(), DeletePrompt("Dentist"))
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
	assert.Equal(t, "Do you want to delete 'Dentist'? (y/n): ", out.String())

	answer, err = c.Confirm(context.Background(), "again: ")
	require.NoError(t, err)
	assert.Equal(t, "no", answer)

	_, err = c.Confirm(context.Background(), "eof: ")
	assert.Error(t, err)
}

func TestLineConfirmer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := NewLineConfirmer(strings.NewReader("y\n"), &out).Confirm(ctx, "?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
