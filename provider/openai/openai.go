// Package openai provides an implementation of provider.Provider using the
// OpenAI Chat Completions API. It adapts Lectern's role-based session
// history into the SDK's message format.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/provider"
)

// Options configure the OpenAI provider adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Provider wraps the OpenAI Chat Completions API behind the generic
// provider.Provider interface.
type Provider struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewFromClient creates a new OpenAI provider from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// Complete implements provider.Provider using a non-streaming chat
// completion call.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.History),
		Model:               p.opts.Model,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxCompletionTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages converts session history into OpenAI chat messages. The
// seeded initial instruction and injected situational notices are
// context-role entries and map to system messages, preserving their
// position in the conversation.
func buildMessages(history []core.Entry) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, e := range history {
		if e.Text == "" {
			continue
		}
		switch e.Role {
		case core.RoleHuman:
			messages = append(messages, openai.UserMessage(e.Text))
		case core.RoleAgent:
			messages = append(messages, openai.AssistantMessage(e.Text))
		case core.RoleContext:
			messages = append(messages, openai.SystemMessage(e.Text))
		default:
			messages = append(messages, openai.UserMessage(e.Text))
		}
	}
	return messages
}

// Info returns metadata describing this OpenAI provider implementation.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: p.opts.Model, Provider: "openai"}
}
