// Package anthropic provides a provider.Provider wrapper for the Anthropic
// Claude Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/provider"
)

// Options configures the Anthropic provider adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Provider wraps the Anthropic Messages API behind the generic
// provider.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic provider from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Complete implements provider.Provider using a non-streaming messages call.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       p.opts.Model,
		Messages:    buildMessages(req.History),
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}

	if systemBlocks := extractSystemBlocks(req.History); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return text, nil
}

// buildMessages converts human/agent entries to Anthropic messages.
// Context-role entries are carried as system blocks (see
// extractSystemBlocks) because the Messages API accepts instructions only
// through the system parameter.
func buildMessages(history []core.Entry) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, e := range history {
		if e.Text == "" {
			continue
		}
		switch e.Role {
		case core.RoleHuman:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(e.Text)))
		case core.RoleAgent:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(e.Text)))
		case core.RoleContext:
			// Handled separately as system blocks.
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(e.Text)))
		}
	}
	return messages
}

// extractSystemBlocks collects context-role entries in history order. Their
// relative ordering among themselves is preserved; ordering versus the
// surrounding conversation is not, which is acceptable because context
// entries carry standing instructions rather than dialogue.
func extractSystemBlocks(history []core.Entry) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, e := range history {
		if e.Role == core.RoleContext && e.Text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: e.Text})
		}
	}
	return blocks
}

// Info returns metadata describing this Anthropic provider implementation.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: string(p.opts.Model), Provider: "anthropic"}
}
