package client

import (
	"context"
	"errors"
	"testing"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// recordingMiddleware appends name to order each time it runs.
func recordingMiddleware(name string, order *[]string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			*order = append(*order, name)
			return next(ctx, request)
		}
	}
}

func TestBuildSendChain_EmptyMiddlewares(t *testing.T) {
	chain := buildSendChain(&mockProvider{}, nil)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("expected 'test response', got %q", resp.Content)
	}
}

func TestBuildSendChain_OutermostFirst(t *testing.T) {
	order := []string{}
	chain := buildSendChain(&mockProvider{}, []Middleware{
		recordingMiddleware("mw1", &order),
		nil,
		recordingMiddleware("mw2", &order),
		recordingMiddleware("mw3", &order),
	})

	if _, err := chain(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"mw1", "mw2", "mw3"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("position %d: expected %q, got %q", i, name, order[i])
		}
	}
}

func TestBuildSendChain_ShortCircuit(t *testing.T) {
	provider := &mockProvider{}
	shortCircuitError := errors.New("short-circuit")

	shortCircuit := Middleware(func(next SendFunc) SendFunc {
		return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, shortCircuitError
		}
	})

	order := []string{}
	chain := buildSendChain(provider, []Middleware{shortCircuit, recordingMiddleware("after", &order)})

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, shortCircuitError) {
		t.Fatalf("expected short-circuit error, got %v", err)
	}
	if len(order) != 0 || len(provider.requests) != 0 {
		t.Error("nothing after the short-circuit should run")
	}
}

func TestWithMiddleware_ClientCallsChain(t *testing.T) {
	order := []string{}
	c, err := New(&mockProvider{},
		WithMiddleware(recordingMiddleware("a", &order)),
		WithMiddleware(recordingMiddleware("b", &order)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Ask(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestWithMiddleware_SeesFilledDefaults(t *testing.T) {
	var seen ai.ChatRequest
	capture := Middleware(func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			seen = request
			return next(ctx, request)
		}
	})

	c, _ := New(&mockProvider{}, WithDefaultModel("m"), WithMiddleware(capture))
	_, _ = c.Ask(context.Background(), "hello")

	if seen.Model != "m" {
		t.Errorf("middleware should see the default model, got %q", seen.Model)
	}
}
