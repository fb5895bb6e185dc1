package ai

import "context"

// Provider sends chat requests to a hosted language model.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// It returns an error if the call fails, the context is cancelled, or the
	// provider returns no choices.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// Name identifies the backend in logs, e.g. "openai" or "huggingface".
	Name() string
}

// Embedder turns text into vector embeddings.
type Embedder interface {
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds texts in one batch, preserving input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
