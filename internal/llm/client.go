// Package llm provides language model client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// DefaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// Config selects and configures a provider.
type Config struct {
	Provider Provider
	APIKey   string
	BaseURL  string
}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown model provider %q, must be one of: ollama, openai, anthropic", name)
	}
}

// NewClient creates a new LLM client based on provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaBaseURL
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			// Ollama ignores the key but the client requires one.
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, baseURL, string(ProviderOllama))
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, string(ProviderOpenAI))
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
