// Package openai builds [ai.Provider] and [ai.Embedder] values for
// OpenAI-compatible APIs using the langchaingo openai client.
//
// [ConfigFromEnv] reads OPENAI_API_KEY, OPENAI_API_BASE_URL, OPENAI_MODEL and
// OPENAI_EMBEDDING_MODEL. Any server speaking the OpenAI chat completions and
// embeddings protocol can be targeted by overriding BaseURL; the huggingface
// package does exactly that for the Hugging Face router.
package openai
