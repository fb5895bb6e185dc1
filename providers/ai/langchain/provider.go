package langchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// ErrNoChoices is returned when the model answers without any choice.
var ErrNoChoices = errors.New("langchain: no choices in response")

// Provider implements ai.Provider on top of a langchaingo llms.Model.
type Provider struct {
	llm          llms.Model
	name         string
	defaultModel string
}

// Ensure Provider implements ai.Provider at compile time.
var _ ai.Provider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithName sets the backend name reported by Name.
func WithName(name string) ProviderOption {
	return func(p *Provider) {
		p.name = name
	}
}

// WithDefaultModel records the model the underlying client was built for.
// It is reported on responses when the request does not name a model.
func WithDefaultModel(model string) ProviderOption {
	return func(p *Provider) {
		p.defaultModel = model
	}
}

// NewProvider wraps llm.
func NewProvider(llm llms.Model, opts ...ProviderOption) *Provider {
	p := &Provider{
		llm:  llm,
		name: "langchain",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name set with WithName, "langchain" by default.
func (p *Provider) Name() string {
	return p.name
}

// SendMessage converts request into langchaingo message content and call
// options, generates a completion, and returns the first choice.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if len(request.Messages) == 0 && request.SystemPrompt == "" {
		return nil, fmt.Errorf("%s: request has no messages", p.name)
	}

	resp, err := p.llm.GenerateContent(ctx, requestToContent(request), requestToOptions(request)...)
	if err != nil {
		return nil, fmt.Errorf("%s: generate content: %w", p.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrNoChoices)
	}

	choice := resp.Choices[0]
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	return &ai.ChatResponse{
		Model:        model,
		Content:      choice.Content,
		FinishReason: choice.StopReason,
		Usage:        usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}
