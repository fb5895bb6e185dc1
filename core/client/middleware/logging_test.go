package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// testLogger writes to buf so tests can inspect emitted lines.
func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func okNext(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	return &ai.ChatResponse{
		Model:        "test-model",
		Content:      "The sentiment is positive",
		FinishReason: "stop",
		Usage:        &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func testRequest() ai.ChatRequest {
	return ai.ChatRequest{
		Model:          "test-model",
		Messages:       []ai.Message{ai.NewUserMessage("secret review text")},
		ResponseFormat: &ai.ResponseFormat{Type: ai.ResponseFormatJSONObject},
	}
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      LogLevel
		contains   []string
		notContain []string
	}{
		{
			name:       "minimal",
			level:      LogLevelMinimal,
			contains:   []string{"llm send completed", "model=test-model", "total_tokens=15"},
			notContain: []string{"message_count", "finish_reason", "secret review text"},
		},
		{
			name:       "standard",
			level:      LogLevelStandard,
			contains:   []string{"message_count=1", "finish_reason=stop", "response_format=json_object"},
			notContain: []string{"secret review text", "response_content"},
		},
		{
			name:     "verbose",
			level:    LogLevelVerbose,
			contains: []string{"secret review text", "response_content=\"The sentiment is positive\""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			chain := NewLoggingMiddleware(testLogger(buf), tt.level)(okNext)

			if _, err := chain(context.Background(), testRequest()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			output := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("expected %q in log, got:\n%s", s, output)
				}
			}
			for _, s := range tt.notContain {
				if strings.Contains(output, s) {
					t.Errorf("did not expect %q in log, got:\n%s", s, output)
				}
			}
		})
	}
}

func TestLoggingMiddleware_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	providerErr := errors.New("connection refused")
	next := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, providerErr
	}

	_, err := NewLoggingMiddleware(testLogger(buf), LogLevelStandard)(next)(context.Background(), testRequest())
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if !strings.Contains(buf.String(), "llm send failed") || !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected failure log, got:\n%s", buf.String())
	}
}

func TestLoggingMiddleware_VerboseTruncates(t *testing.T) {
	buf := &bytes.Buffer{}
	long := strings.Repeat("x", 2*truncateLen)
	next := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Content: long}, nil
	}

	_, _ = NewLoggingMiddleware(testLogger(buf), LogLevelVerbose)(next)(context.Background(), ai.ChatRequest{})

	if strings.Contains(buf.String(), long) {
		t.Error("expected response content to be truncated")
	}
	if !strings.Contains(buf.String(), "truncated") {
		t.Errorf("expected truncation marker, got:\n%s", buf.String())
	}
}

func TestLoggingMiddleware_NilLogger(t *testing.T) {
	chain := NewLoggingMiddleware(nil, LogLevelMinimal)(okNext)
	if _, err := chain(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
