package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// mockSendSequence answers call i with errors[i] when set, otherwise with
// responses[i] or a default response.
type mockSendSequence struct {
	responses []*ai.ChatResponse
	errors    []error
	callCount int
}

func (m *mockSendSequence) next(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	index := m.callCount
	m.callCount++

	if index < len(m.errors) && m.errors[index] != nil {
		return nil, m.errors[index]
	}
	if index < len(m.responses) {
		return m.responses[index], nil
	}
	return &ai.ChatResponse{Content: "default", FinishReason: "stop"}, nil
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestRetryMiddleware_SuccessOnFirstTry(t *testing.T) {
	seq := &mockSendSequence{responses: []*ai.ChatResponse{{Content: "ok"}}}

	chain := NewRetryMiddleware(fastRetry(3))(seq.next)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected 'ok', got %q", resp.Content)
	}
	if seq.callCount != 1 {
		t.Errorf("expected 1 call, got %d", seq.callCount)
	}
}

func TestRetryMiddleware_RecoversAfterTransientErrors(t *testing.T) {
	seq := &mockSendSequence{
		errors: []error{
			errors.New("openai: API returned unexpected status code: 503"),
			errors.New("rate limit reached"),
		},
		responses: []*ai.ChatResponse{nil, nil, {Content: "third time"}},
	}

	chain := NewRetryMiddleware(fastRetry(3))(seq.next)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "third time" {
		t.Errorf("expected 'third time', got %q", resp.Content)
	}
	if seq.callCount != 3 {
		t.Errorf("expected 3 calls, got %d", seq.callCount)
	}
}

func TestRetryMiddleware_Exhausted(t *testing.T) {
	lastErr := errors.New("status 429")
	seq := &mockSendSequence{errors: []error{errors.New("status 500"), errors.New("status 502"), lastErr}}

	chain := NewRetryMiddleware(fastRetry(2))(seq.next)

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("expected last provider error to be wrapped, got %v", err)
	}
	if seq.callCount != 3 {
		t.Errorf("expected 3 calls (1 + 2 retries), got %d", seq.callCount)
	}
}

func TestRetryMiddleware_NonRetryableReturnsImmediately(t *testing.T) {
	quota := errors.New("status 429: You exceeded your current quota (insufficient_quota)")
	seq := &mockSendSequence{errors: []error{quota}}

	chain := NewRetryMiddleware(fastRetry(3))(seq.next)

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, quota) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("non-retryable errors must not be reported as exhausted")
	}
	if seq.callCount != 1 {
		t.Errorf("expected 1 call, got %d", seq.callCount)
	}
}

func TestRetryMiddleware_NegativeMaxRetriesDisables(t *testing.T) {
	transient := errors.New("503 service unavailable")
	seq := &mockSendSequence{errors: []error{transient}}

	chain := NewRetryMiddleware(RetryConfig{MaxRetries: -1})(seq.next)

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, transient) || errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected the raw error, got %v", err)
	}
	if seq.callCount != 1 {
		t.Errorf("expected 1 call, got %d", seq.callCount)
	}
}

func TestRetryMiddleware_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seq := &mockSendSequence{errors: []error{errors.New("503")}}
	next := func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		cancel()
		return seq.next(ctx, req)
	}

	chain := NewRetryMiddleware(RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour})(next)

	_, err := chain(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// slowFirstCall blocks its first call until the context expires and answers
// every later call immediately.
type slowFirstCall struct {
	calls atomic.Int32
}

func (s *slowFirstCall) next(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	if s.calls.Add(1) == 1 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &ai.ChatResponse{Content: "second attempt"}, nil
}

func TestRetryMiddleware_RetriesPerAttemptTimeout(t *testing.T) {
	slow := &slowFirstCall{}
	chain := NewRetryMiddleware(fastRetry(2))(NewTimeoutMiddleware(20 * time.Millisecond)(slow.next))

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "second attempt" {
		t.Errorf("expected 'second attempt', got %q", resp.Content)
	}
	if got := slow.calls.Load(); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestRetryMiddleware_CallerDeadlineNotRetried(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	slow := &slowFirstCall{}
	chain := NewRetryMiddleware(fastRetry(2))(slow.next)

	_, err := chain(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Errorf("caller deadline should not be reported as exhaustion: %v", err)
	}
	if got := slow.calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestRetryMiddleware_CustomRetryable(t *testing.T) {
	flaky := errors.New("flaky")
	seq := &mockSendSequence{errors: []error{flaky}}

	config := fastRetry(1)
	config.RetryableFunc = func(err error) bool { return errors.Is(err, flaky) }

	_, err := NewRetryMiddleware(config)(seq.next)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.callCount != 2 {
		t.Errorf("expected 2 calls, got %d", seq.callCount)
	}
}

func TestRetryMiddleware_LogsRetries(t *testing.T) {
	buf := &bytes.Buffer{}
	config := fastRetry(1)
	config.Logger = slog.New(slog.NewTextHandler(buf, nil))
	seq := &mockSendSequence{errors: []error{errors.New("status 500")}}

	_, _ = NewRetryMiddleware(config)(seq.next)(context.Background(), ai.ChatRequest{})

	if !strings.Contains(buf.String(), "retrying llm call") {
		t.Errorf("expected retry warning, got %q", buf.String())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", errors.New("API returned unexpected status code: 429"), true},
		{"server error", errors.New("status 500 internal"), true},
		{"bad gateway", errors.New("502 Bad Gateway"), true},
		{"overloaded", errors.New("Model is Overloaded"), true},
		{"quota", errors.New("429 insufficient_quota"), false},
		{"invalid key", errors.New("401 invalid_api_key"), false},
		{"bad request", errors.New("400 bad request"), false},
		{"cancelled", fmt.Errorf("generate: %w", context.Canceled), false},
		{"deadline", fmt.Errorf("503: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestComputeBackoff(t *testing.T) {
	config := RetryConfig{}
	applyRetryDefaults(&config)

	first := computeBackoff(config, 0)
	if first < time.Second || first > 1100*time.Millisecond {
		t.Errorf("attempt 0 backoff out of range: %v", first)
	}

	capped := computeBackoff(config, 20)
	if capped < 30*time.Second || capped > 33*time.Second {
		t.Errorf("expected backoff capped near 30s, got %v", capped)
	}
}
