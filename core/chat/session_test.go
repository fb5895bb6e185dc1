package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/providers/ai"
	"github.com/leofalp/llmrecipes/providers/memory/inmemory"
)

// echoProvider answers "echo: <last user message>" unless err is set.
type echoProvider struct {
	mu       sync.Mutex
	requests []ai.ChatRequest
	err      error
}

func (e *echoProvider) SendMessage(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if e.err != nil {
		return nil, e.err
	}
	last := req.Messages[len(req.Messages)-1]
	return &ai.ChatResponse{Content: "echo: " + last.Content, FinishReason: "stop"}, nil
}

func (e *echoProvider) Name() string { return "echo" }

func newSession(t *testing.T, p ai.Provider, opts ...Option) *Session {
	t.Helper()
	c, err := client.New(p)
	require.NoError(t, err)
	s, err := NewSession(c, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionNilClient(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestSessionID(t *testing.T) {
	a := newSession(t, &echoProvider{})
	b := newSession(t, &echoProvider{})

	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSendBuildsConversation(t *testing.T) {
	p := &echoProvider{}
	s := newSession(t, p)
	ctx := context.Background()

	resp, err := s.Send(ctx, "Hi, I'm Sam")
	require.NoError(t, err)
	assert.Equal(t, "echo: Hi, I'm Sam", resp.Content)

	_, err = s.Send(ctx, "What's my name?")
	require.NoError(t, err)

	require.Len(t, p.requests, 2)
	first, second := p.requests[0], p.requests[1]

	assert.Equal(t, DefaultSystemPrompt, first.SystemPrompt)
	assert.Equal(t, []ai.Message{ai.NewUserMessage("Hi, I'm Sam")}, first.Messages)

	assert.Equal(t, DefaultSystemPrompt, second.SystemPrompt)
	assert.Equal(t, []ai.Message{
		ai.NewUserMessage("Hi, I'm Sam"),
		ai.NewAssistantMessage("echo: Hi, I'm Sam"),
		ai.NewUserMessage("What's my name?"),
	}, second.Messages)

	history, err := s.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Equal(t, ai.RoleAssistant, history[3].Role)
}

func TestSendTemplateSyntaxInInput(t *testing.T) {
	p := &echoProvider{}
	s := newSession(t, p, WithSystemPrompt("you are a {{helpful}} Customer support Agent."))

	resp, err := s.Send(context.Background(), "Where is my {{.refund}}?")
	require.NoError(t, err)
	assert.Equal(t, "echo: Where is my {{.refund}}?", resp.Content)
	assert.Equal(t, "you are a {{helpful}} Customer support Agent.", p.requests[0].SystemPrompt)
}

func TestSendEmptyInput(t *testing.T) {
	p := &echoProvider{}
	s := newSession(t, p)

	for _, input := range []string{"", "  ", "\n\t"} {
		_, err := s.Send(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Empty(t, p.requests)
}

func TestSendFailureLeavesHistoryUntouched(t *testing.T) {
	boom := errors.New("model unavailable")
	p := &echoProvider{err: boom}
	s := newSession(t, p)

	_, err := s.Send(context.Background(), "hello")
	require.ErrorIs(t, err, boom)

	history, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryWindow(t *testing.T) {
	p := &echoProvider{}
	s := newSession(t, p, WithHistoryWindow(2))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := s.Send(ctx, fmt.Sprintf("turn %d", i))
		require.NoError(t, err)
	}

	last := p.requests[len(p.requests)-1]
	assert.Equal(t, []ai.Message{
		ai.NewUserMessage("turn 2"),
		ai.NewAssistantMessage("echo: turn 2"),
		ai.NewUserMessage("turn 3"),
	}, last.Messages)

	history, _ := s.History(ctx)
	assert.Len(t, history, 6, "the window limits what is sent, not what is stored")
}

func TestWithMemoryAndReset(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	require.NoError(t, store.AppendMessage(ctx, ai.NewUserMessage("earlier question")))
	require.NoError(t, store.AppendMessage(ctx, ai.NewAssistantMessage("earlier answer")))

	p := &echoProvider{}
	s := newSession(t, p, WithMemory(store), WithSystemPrompt("you are a helpful Customer support Agent."))

	messages, err := s.Render(ctx, "Where is my refund?")
	require.NoError(t, err)
	assert.Equal(t, []ai.Message{
		{Role: ai.RoleSystem, Content: "you are a helpful Customer support Agent."},
		ai.NewUserMessage("earlier question"),
		ai.NewAssistantMessage("earlier answer"),
		ai.NewUserMessage("Where is my refund?"),
	}, messages)
	assert.Empty(t, p.requests, "Render must not call the model")

	id := s.ID()
	require.NoError(t, s.Reset(ctx))
	n, _ := store.Count(ctx)
	assert.Zero(t, n)
	assert.Equal(t, id, s.ID())
}

func TestIsExitCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"exit", true},
		{"  EXIT \n", true},
		{"Exit", true},
		{"exit now", false},
		{"quit", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExitCommand(tt.input))
		})
	}
}
