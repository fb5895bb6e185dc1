// Package huggingface builds providers for models served through the Hugging
// Face inference router, which exposes an OpenAI-compatible API.
package huggingface

import (
	"os"

	"github.com/leofalp/llmrecipes/providers/ai/langchain"
	"github.com/leofalp/llmrecipes/providers/ai/openai"
)

// Defaults applied by ConfigFromEnv and New when a field is empty.
const (
	DefaultBaseURL        = "https://router.huggingface.co/v1"
	DefaultModel          = "meta-llama/Llama-3.1-8B-Instruct"
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

	providerName = "huggingface"
)

// Config is the OpenAI-compatible configuration with Hugging Face defaults.
type Config = openai.Config

// ConfigFromEnv reads HUGGINGFACEHUB_ACCESS_TOKEN and the HUGGINGFACE_*
// overrides.
func ConfigFromEnv() Config {
	return Config{
		Name:           providerName,
		APIKey:         os.Getenv("HUGGINGFACEHUB_ACCESS_TOKEN"),
		BaseURL:        envOr("HUGGINGFACE_BASE_URL", DefaultBaseURL),
		Model:          envOr("HUGGINGFACE_MODEL", DefaultModel),
		EmbeddingModel: envOr("HUGGINGFACE_EMBEDDING_MODEL", DefaultEmbeddingModel),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func withDefaults(cfg Config) Config {
	if cfg.Name == "" {
		cfg.Name = providerName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	return cfg
}

// New returns a chat provider for cfg. Empty fields take the Hugging Face
// defaults rather than the OpenAI ones.
func New(cfg Config) (*langchain.Provider, error) {
	return openai.New(withDefaults(cfg))
}

// NewEmbedder returns an embedder for cfg.EmbeddingModel.
func NewEmbedder(cfg Config) (*langchain.Embedder, error) {
	return openai.NewEmbedder(withDefaults(cfg))
}
