package inmemory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leofalp/llmrecipes/providers/ai"
	"github.com/leofalp/llmrecipes/providers/memory"
)

// Store is an in-memory conversation history guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	messages    []ai.Message
	maxMessages int
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMessages caps the history at n messages. When the cap is exceeded the
// oldest messages are dropped. n <= 0 means unbounded.
func WithMaxMessages(n int) Option {
	return func(s *Store) {
		s.maxMessages = n
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		messages: []ai.Message{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Store implements memory.Provider at compile time.
var _ memory.Provider = (*Store)(nil)

// AppendMessage stores message, dropping the oldest entries beyond the cap.
func (s *Store) AppendMessage(ctx context.Context, message ai.Message) error {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	dropped := 0
	if s.maxMessages > 0 && len(s.messages) > s.maxMessages {
		dropped = len(s.messages) - s.maxMessages
		// Copy so the dropped prefix can be collected.
		kept := make([]ai.Message, s.maxMessages)
		copy(kept, s.messages[dropped:])
		s.messages = kept
	}
	total := len(s.messages)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.DebugContext(ctx, "memory append",
			slog.String("role", string(message.Role)),
			slog.Int("content_length", len(message.Content)),
			slog.Int("total_messages", total),
			slog.Int("dropped", dropped),
		)
	}
	return nil
}

// Count returns the number of stored messages.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

// AllMessages returns a copy so callers cannot mutate the stored history.
func (s *Store) AllMessages(_ context.Context) ([]ai.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ai.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// LastMessages returns all messages when n exceeds the history length.
func (s *Store) LastMessages(_ context.Context, n int) ([]ai.Message, error) {
	if n <= 0 {
		return []ai.Message{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.messages) {
		n = len(s.messages)
	}
	out := make([]ai.Message, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out, nil
}

// ClearMessages keeps the backing array so the next turns do not reallocate.
func (s *Store) ClearMessages(ctx context.Context) error {
	s.mu.Lock()
	s.messages = s.messages[:0]
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.DebugContext(ctx, "memory cleared")
	}
	return nil
}
