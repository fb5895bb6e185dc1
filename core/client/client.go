package client

import (
	"context"
	"errors"
	"strings"

	"github.com/leofalp/llmrecipes/providers/ai"
)

var (
	// ErrNilProvider is returned by New when no provider is given.
	ErrNilProvider = errors.New("client: provider is nil")

	// ErrEmptyPrompt is returned by Ask for a blank prompt.
	ErrEmptyPrompt = errors.New("client: prompt is empty")
)

// ClientOptions holds the defaults applied to every request.
type ClientOptions struct {
	DefaultModel     string
	SystemPrompt     string
	GenerationConfig *ai.GenerationConfig
	Middlewares      []Middleware
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithSystemPrompt sets the system prompt used when a request has none.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithGenerationConfig sets the sampling settings used when a request has none.
func WithGenerationConfig(cfg ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &cfg
	}
}

// WithMiddleware appends middlewares to the chain. Earlier entries wrap later
// ones.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// Client sends requests to a provider through the configured middleware chain.
// A Client is safe for concurrent use once built.
type Client struct {
	provider ai.Provider
	options  ClientOptions
	send     SendFunc
}

// New builds a Client for provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	var options ClientOptions
	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		provider: provider,
		options:  options,
		send:     buildSendChain(provider, options.Middlewares),
	}, nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Options returns a copy of the client defaults.
func (c *Client) Options() ClientOptions {
	return c.options
}

// Send fills the request defaults and runs it through the middleware chain.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.options.DefaultModel
	}
	if request.SystemPrompt == "" {
		request.SystemPrompt = c.options.SystemPrompt
	}
	if request.GenerationConfig == nil && c.options.GenerationConfig != nil {
		cfg := *c.options.GenerationConfig
		request.GenerationConfig = &cfg
	}
	return c.send(ctx, request)
}

// SendOption adjusts a single Ask call.
type SendOption func(*ai.ChatRequest)

// WithJSONResponse asks the model to answer with a JSON object.
func WithJSONResponse() SendOption {
	return func(r *ai.ChatRequest) {
		r.ResponseFormat = &ai.ResponseFormat{Type: ai.ResponseFormatJSONObject}
	}
}

// WithGeneration overrides the sampling settings for one call.
func WithGeneration(cfg ai.GenerationConfig) SendOption {
	return func(r *ai.ChatRequest) {
		r.GenerationConfig = &cfg
	}
}

// WithModel overrides the model for one call.
func WithModel(model string) SendOption {
	return func(r *ai.ChatRequest) {
		r.Model = model
	}
}

// Ask sends prompt as a single user message.
func (c *Client) Ask(ctx context.Context, prompt string, opts ...SendOption) (*ai.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	request := ai.ChatRequest{
		Messages: []ai.Message{ai.NewUserMessage(prompt)},
	}
	for _, opt := range opts {
		opt(&request)
	}
	return c.Send(ctx, request)
}
