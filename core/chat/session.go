// Package chat runs multi-turn conversations. A Session renders each turn
// with a langchaingo chat prompt template (system message, the previous turns
// through a messages placeholder, then the new query) and keeps the history
// in a memory.Provider.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/prompts"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/providers/ai"
	"github.com/leofalp/llmrecipes/providers/ai/langchain"
	"github.com/leofalp/llmrecipes/providers/memory"
	"github.com/leofalp/llmrecipes/providers/memory/inmemory"
)

const (
	// DefaultSystemPrompt is used when WithSystemPrompt is not given.
	DefaultSystemPrompt = "You are a helpful AI assistant !"

	// ExitCommand ends an interactive session.
	ExitCommand = "exit"

	historyVariable = "chat_history"
	queryVariable   = "query"
	systemVariable  = "system"
)

var (
	// ErrEmptyInput is returned by Send for blank input.
	ErrEmptyInput = errors.New("chat: input is empty")

	// ErrNilClient is returned by NewSession when no client is given.
	ErrNilClient = errors.New("chat: client is nil")
)

// IsExitCommand reports whether input asks to end the session.
func IsExitCommand(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), ExitCommand)
}

// Option configures a Session.
type Option func(*Session)

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.systemPrompt = prompt
	}
}

// WithMemory sets the history store. The default is a fresh in-memory store.
func WithMemory(m memory.Provider) Option {
	return func(s *Session) {
		if m != nil {
			s.memory = m
		}
	}
}

// WithHistoryWindow limits how many previous messages are sent with each
// turn. n <= 0 sends the whole history.
func WithHistoryWindow(n int) Option {
	return func(s *Session) {
		s.window = n
	}
}

// WithLogger sets the base logger; the session adds its component and id.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one conversation. Turns are serialized: concurrent Send calls
// run one after the other.
type Session struct {
	id           string
	client       *client.Client
	memory       memory.Provider
	systemPrompt string
	window       int
	logger       *slog.Logger
	template     prompts.ChatPromptTemplate

	mu sync.Mutex
}

// NewSession starts a conversation that sends its turns through c.
func NewSession(c *client.Client, opts ...Option) (*Session, error) {
	if c == nil {
		return nil, ErrNilClient
	}

	s := &Session{
		id:           uuid.NewString(),
		client:       c,
		systemPrompt: DefaultSystemPrompt,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.memory == nil {
		s.memory = inmemory.New()
	}
	s.logger = s.logger.With(
		slog.String("component", "chat"),
		slog.String("session_id", s.id),
	)

	s.template = prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate("{{.system}}", []string{systemVariable}),
		prompts.MessagesPlaceholder{VariableName: historyVariable},
		prompts.NewHumanMessagePromptTemplate("{{.query}}", []string{queryVariable}),
	})
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// SystemPrompt returns the system message sent with every turn.
func (s *Session) SystemPrompt() string {
	return s.systemPrompt
}

// Send renders the next turn, asks the model and records the exchange. The
// history is only updated when the model answers.
func (s *Session) Send(ctx context.Context, input string) (*ai.ChatResponse, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.buildRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Send(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("chat: send turn: %w", err)
	}

	if err := s.memory.AppendMessage(ctx, ai.NewUserMessage(input)); err != nil {
		return nil, fmt.Errorf("chat: store user turn: %w", err)
	}
	if err := s.memory.AppendMessage(ctx, ai.NewAssistantMessage(resp.Content)); err != nil {
		return nil, fmt.Errorf("chat: store assistant turn: %w", err)
	}

	s.logger.DebugContext(ctx, "chat turn completed",
		slog.Int("history_messages", len(request.Messages)-1),
		slog.Int("answer_length", len(resp.Content)),
	)
	return resp, nil
}

// Render returns the messages the next turn would send for input, without
// calling the model. The system prompt comes first.
func (s *Session) Render(ctx context.Context, input string) ([]ai.Message, error) {
	request, err := s.buildRequest(ctx, input)
	if err != nil {
		return nil, err
	}
	messages := make([]ai.Message, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: request.SystemPrompt})
	}
	return append(messages, request.Messages...), nil
}

func (s *Session) buildRequest(ctx context.Context, input string) (ai.ChatRequest, error) {
	history, err := s.recentHistory(ctx)
	if err != nil {
		return ai.ChatRequest{}, err
	}

	rendered, err := s.template.FormatMessages(map[string]any{
		systemVariable:  s.systemPrompt,
		historyVariable: langchain.ToChatMessages(history),
		queryVariable:   input,
	})
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("chat: render prompt: %w", err)
	}

	messages, err := langchain.FromChatMessages(rendered)
	if err != nil {
		return ai.ChatRequest{}, fmt.Errorf("chat: render prompt: %w", err)
	}

	var request ai.ChatRequest
	if len(messages) > 0 && messages[0].Role == ai.RoleSystem {
		request.SystemPrompt = messages[0].Content
		messages = messages[1:]
	}
	request.Messages = messages
	return request, nil
}

func (s *Session) recentHistory(ctx context.Context) ([]ai.Message, error) {
	var (
		history []ai.Message
		err     error
	)
	if s.window > 0 {
		history, err = s.memory.LastMessages(ctx, s.window)
	} else {
		history, err = s.memory.AllMessages(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("chat: load history: %w", err)
	}
	return history, nil
}

// History returns the stored turns, oldest first. The system prompt is not
// part of the history.
func (s *Session) History(ctx context.Context) ([]ai.Message, error) {
	return s.memory.AllMessages(ctx)
}

// Reset clears the history and keeps the session ID.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.ClearMessages(ctx)
}
