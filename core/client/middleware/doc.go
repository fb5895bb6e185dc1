// Package middleware provides the built-in [client.Middleware] values used by
// the recipes.
//
//   - [NewRetryMiddleware] retries transient provider failures (rate limits,
//     5xx responses) with exponential backoff and jitter.
//   - [NewTimeoutMiddleware] bounds every provider call with a deadline.
//   - [NewLoggingMiddleware] emits structured slog entries around every call.
//
// Middlewares run outermost-first:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	    ),
//	)
//
// Here each attempt made by the retry middleware gets its own deadline, and the
// logging middleware records the call as a whole.
package middleware
