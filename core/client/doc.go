// Package client sits between the recipes and a raw [ai.Provider]. A Client
// carries the default model, system prompt and generation settings, and runs
// every request through a middleware chain (retry, timeout, logging) before it
// reaches the provider.
//
// The entry point is [New], configured with functional options such as
// [WithDefaultModel], [WithSystemPrompt] and [WithMiddleware].
package client
