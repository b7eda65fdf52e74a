package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"ollama", ProviderOllama, false},
		{" OpenAI ", ProviderOpenAI, false},
		{"anthropic", ProviderAnthropic, false},
		{"gemini", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Name())

	_, err = NewClient(Config{Provider: ProviderOpenAI})
	assert.Error(t, err, "openai requires an API key")

	_, err = NewClient(Config{Provider: ProviderAnthropic})
	assert.Error(t, err, "anthropic requires an API key")

	c, err = NewClient(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Name())

	_, err = NewClient(Config{Provider: "gemini"})
	assert.Error(t, err)
}
