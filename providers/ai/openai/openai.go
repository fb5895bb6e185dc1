package openai

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/leofalp/llmrecipes/providers/ai/langchain"
)

// Defaults applied by ConfigFromEnv and New when a field is empty.
const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-large"

	providerName = "openai"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// Config holds the connection settings for an OpenAI-compatible backend.
type Config struct {
	Name           string // Reported by Provider.Name; defaults to "openai"
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	HTTPClient     *http.Client
}

// ConfigFromEnv reads the OPENAI_* environment variables, falling back to
// the package defaults.
func ConfigFromEnv() Config {
	return Config{
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		BaseURL:        envOr("OPENAI_API_BASE_URL", DefaultBaseURL),
		Model:          envOr("OPENAI_MODEL", DefaultModel),
		EmbeddingModel: envOr("OPENAI_EMBEDDING_MODEL", DefaultEmbeddingModel),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = providerName
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	return c
}

func (c Config) clientOptions() []openai.Option {
	opts := []openai.Option{
		openai.WithToken(c.APIKey),
		openai.WithBaseURL(c.BaseURL),
		openai.WithModel(c.Model),
		openai.WithEmbeddingModel(c.EmbeddingModel),
	}
	if c.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(c.HTTPClient))
	}
	return opts
}

// NewLLM returns the raw langchaingo client for cfg.
func NewLLM(cfg Config) (*openai.LLM, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrMissingAPIKey)
	}
	llm, err := openai.New(cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: create client: %w", cfg.Name, err)
	}
	return llm, nil
}

// New returns a chat provider for cfg.
func New(cfg Config) (*langchain.Provider, error) {
	cfg = cfg.withDefaults()
	llm, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}
	return langchain.NewProvider(llm,
		langchain.WithName(cfg.Name),
		langchain.WithDefaultModel(cfg.Model),
	), nil
}

// NewEmbedder returns an embedder for cfg.EmbeddingModel. Newlines are
// stripped from inputs before embedding.
func NewEmbedder(cfg Config) (*langchain.Embedder, error) {
	cfg = cfg.withDefaults()
	llm, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%s: create embedder: %w", cfg.Name, err)
	}
	return langchain.NewEmbedder(embedder), nil
}
