// Package langchain adapts github.com/tmc/langchaingo models and embedders to
// the [ai.Provider] and [ai.Embedder] interfaces. Vendor packages
// (providers/ai/openai, providers/ai/huggingface) only construct the
// langchaingo client; everything request-shaped goes through this package.
//
// Message conversion helpers translate between [ai.Message] and the
// langchaingo llms.MessageContent / llms.ChatMessage types so that
// langchaingo prompt templates can be rendered into ai requests.
package langchain
