package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/providers/ai"
)

// RetryConfig tunes the retry middleware. Zero values take the defaults noted
// on each field.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first failure. Default: 2.
	// A negative value disables retries.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier. Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds up to JitterFraction*backoff of random noise.
	// Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether err should be retried. Default:
	// [IsRetryable].
	RetryableFunc func(error) bool

	// Logger receives a warning for every retry. Optional.
	Logger *slog.Logger
}

var (
	retryableMarkers    = []string{"429", "500", "502", "503", "529", "rate limit", "overloaded"}
	nonRetryableMarkers = []string{"insufficient_quota", "invalid_api_key"}
)

// IsRetryable reports whether err looks like a transient provider failure.
// Provider errors carry HTTP status codes as text, so the check is a string
// match. Quota and credential errors are never retried even though the API
// reports quota exhaustion as a 429. Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range nonRetryableMarkers {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func applyRetryDefaults(config *RetryConfig) {
	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = 2
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = IsRetryable
	}
}

// computeBackoff returns min(InitialBackoff * BackoffFactor^attempt, MaxBackoff)
// plus jitter, for a 0-indexed attempt.
func computeBackoff(config RetryConfig, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // jitter only
	return time.Duration(base + jitter)
}

// attemptTimedOut reports whether err is a deadline set inside the chain, such
// as a per-attempt timeout, while the caller's ctx is still live.
func attemptTimedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

// NewRetryMiddleware retries failed sends according to config. Non-retryable
// errors are returned unchanged after the first attempt. A deadline hit by an
// inner timeout middleware is retried as long as ctx itself is not done. On
// exhaustion the error wraps both [ErrRetryExhausted] and the last provider
// error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	applyRetryDefaults(&config)

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					backoff := computeBackoff(config, attempt-1)
					if config.Logger != nil {
						config.Logger.WarnContext(ctx, "retrying llm call",
							slog.Int("attempt", attempt),
							slog.Duration("backoff", backoff),
							slog.String("error", lastErr.Error()),
						)
					}
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(backoff):
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}

				lastErr = err
				if !config.RetryableFunc(err) && !attemptTimedOut(ctx, err) {
					return nil, err
				}
			}

			if config.MaxRetries == 0 {
				return nil, lastErr
			}
			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
