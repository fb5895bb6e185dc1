package client

import (
	"context"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// SendFunc sends a chat request and returns the completed response. It is the
// unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc in the chain. The first middleware given
// to [WithMiddleware] is the outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// buildSendChain applies middlewares in reverse so that middlewares[0] runs
// first on the way in.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}

	return chain
}
