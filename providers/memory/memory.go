package memory

import (
	"context"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// Provider stores the turns of one conversation.
type Provider interface {
	// AppendMessage adds message at the end of the history.
	AppendMessage(ctx context.Context, message ai.Message) error

	// AllMessages returns a copy of the whole history, oldest first.
	AllMessages(ctx context.Context) ([]ai.Message, error)

	// LastMessages returns up to n of the most recent messages, oldest first.
	// It returns an empty slice when n <= 0.
	LastMessages(ctx context.Context, n int) ([]ai.Message, error)

	Count(ctx context.Context) (int, error)

	// ClearMessages drops the whole history.
	ClearMessages(ctx context.Context) error
}
