package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// Embedder implements ai.Embedder on top of a langchaingo embeddings.Embedder.
type Embedder struct {
	embedder embeddings.Embedder
}

// Ensure Embedder implements ai.Embedder at compile time.
var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder wraps embedder.
func NewEmbedder(embedder embeddings.Embedder) *Embedder {
	return &Embedder{embedder: embedder}
}

// EmbedQuery embeds a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vector, nil
}

// EmbedDocuments returns an empty result without calling the backend when
// texts is empty.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d documents: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
