package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/internal/utils"
	"github.com/leofalp/llmrecipes/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, response format and finish
	// reason.
	LogLevelStandard

	// LogLevelVerbose adds the last user message and the response content,
	// each truncated to 500 characters. Do not use it in production: prompts
	// and answers may contain personal data.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs every call before and after it reaches the next
// handler. A nil logger falls back to slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(request.Messages)))
		if request.WantsJSON() {
			attrs = append(attrs, slog.String("response_format", ai.ResponseFormatJSONObject))
		}
	}

	if level >= LogLevelVerbose {
		if last, ok := lastUserMessage(request.Messages); ok {
			attrs = append(attrs, slog.String("prompt", utils.TruncateString(last.Content, truncateLen)))
		}
	}

	return attrs
}

func lastUserMessage(messages []ai.Message) (ai.Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return messages[i], true
		}
	}
	return ai.Message{}, false
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
