package middleware

import (
	"context"
	"time"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/providers/ai"
)

// NewTimeoutMiddleware bounds each call with timeout. A shorter deadline
// already on the caller's context still wins. A non-positive timeout returns a
// pass-through middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
