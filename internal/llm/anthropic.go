package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-20241022"

// AnthropicClient is the Anthropic LLM client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey, baseURL string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic)
}

// Complete sends a completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	folded := foldForAnthropic(req.Messages, req.JSON)

	// Convert messages to Anthropic format
	messages := make([]anthropic.MessageParam, len(folded))
	for i, msg := range folded {
		messages[i] = anthropic.MessageParam{
			Role: anthropic.F(anthropic.MessageParamRole(msg.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(msg.Content),
				},
			}),
		}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(model),
		MaxTokens:   anthropic.F(int64(maxTokens)),
		Messages:    anthropic.F(messages),
		Temperature: anthropic.F(req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	// Extract content
	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		Model:      resp.Model,
		TokensIn:   int(resp.Usage.InputTokens),
		TokensOut:  int(resp.Usage.OutputTokens),
		StopReason: string(resp.StopReason),
	}, nil
}

// jsonOnlyHint replaces the response_format switch the Messages API lacks.
const jsonOnlyHint = "Respond with a single JSON object and nothing else."

// foldForAnthropic turns a system+dialogue list into the strictly alternating
// user/assistant list the Messages API accepts. System text is prepended to
// the first user message and consecutive messages with the same role are merged.
func foldForAnthropic(in []ChatMessage, jsonOnly bool) []ChatMessage {
	var system []string
	var out []ChatMessage

	for _, msg := range in {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		role := RoleUser
		if msg.Role == RoleAssistant {
			role = RoleAssistant
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + msg.Content
			continue
		}
		out = append(out, ChatMessage{Role: role, Content: msg.Content})
	}

	if jsonOnly {
		system = append(system, jsonOnlyHint)
	}

	// The first message must come from the user.
	if len(out) == 0 || out[0].Role != RoleUser {
		out = append([]ChatMessage{{Role: RoleUser, Content: ""}}, out...)
	}
	if len(system) > 0 {
		prefix := strings.Join(system, "\n\n")
		if out[0].Content == "" {
			out[0].Content = prefix
		} else {
			out[0].Content = prefix + "\n\n" + out[0].Content
		}
	}
	return out
}
