package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/llmrecipes/providers/ai/huggingface"
	"github.com/leofalp/llmrecipes/providers/ai/openai"
)

// Provider names accepted by LLMRECIPES_PROVIDER and --provider.
const (
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

const (
	DefaultProvider   = ProviderHuggingFace
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"

	defaultEnvFile = ".env"
)

var (
	// ErrMissingAPIKey is returned when the active provider has no key.
	ErrMissingAPIKey = errors.New("config: API key is not set")

	// ErrUnknownProvider is returned for a provider name other than openai or
	// huggingface.
	ErrUnknownProvider = errors.New("config: unknown provider")
)

// ProviderConfig holds the connection settings of one backend.
type ProviderConfig struct {
	Name           string `yaml:"-"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// KeyVariable is the environment variable the key is read from.
	KeyVariable string `yaml:"-"`
}

// Config is the resolved application configuration.
type Config struct {
	Provider    string         `yaml:"provider"`
	OpenAI      ProviderConfig `yaml:"openai"`
	HuggingFace ProviderConfig `yaml:"huggingface"`
	Timeout     time.Duration  `yaml:"-"`
	MaxRetries  int            `yaml:"max_retries"`
	LogLevel    string         `yaml:"log_level"`
	LogFormat   string         `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: DefaultProvider,
		OpenAI: ProviderConfig{
			Name:           ProviderOpenAI,
			BaseURL:        openai.DefaultBaseURL,
			Model:          openai.DefaultModel,
			EmbeddingModel: openai.DefaultEmbeddingModel,
			KeyVariable:    "OPENAI_API_KEY",
		},
		HuggingFace: ProviderConfig{
			Name:           ProviderHuggingFace,
			BaseURL:        huggingface.DefaultBaseURL,
			Model:          huggingface.DefaultModel,
			EmbeddingModel: huggingface.DefaultEmbeddingModel,
			KeyVariable:    "HUGGINGFACEHUB_ACCESS_TOKEN",
		},
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// Load reads envFiles into the process environment and resolves the
// configuration. With no envFiles, ./.env is loaded when it exists. Named
// files must exist.
func Load(envFiles ...string) (*Config, error) {
	return LoadFile("", envFiles...)
}

// LoadFile is Load with a YAML file applied between the defaults and the
// environment. An empty path skips the file.
func LoadFile(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "LLMRECIPES_PROVIDER")

	setString(&c.OpenAI.APIKey, c.OpenAI.KeyVariable)
	setString(&c.OpenAI.BaseURL, "OPENAI_API_BASE_URL")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")

	setString(&c.HuggingFace.APIKey, c.HuggingFace.KeyVariable)
	setString(&c.HuggingFace.BaseURL, "HUGGINGFACE_BASE_URL")
	setString(&c.HuggingFace.Model, "HUGGINGFACE_MODEL")
	setString(&c.HuggingFace.EmbeddingModel, "HUGGINGFACE_EMBEDDING_MODEL")

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogLevel, "LLMRECIPES_LOG_LEVEL")
	setString(&c.LogFormat, "LLMRECIPES_LOG_FORMAT")

	if v := os.Getenv("LLMRECIPES_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("LLMRECIPES_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("LLMRECIPES_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LLMRECIPES_MAX_RETRIES: %w", err)
		}
		c.MaxRetries = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// UnmarshalYAML decodes c from a YAML mapping. The timeout key goes through
// parseDuration so the file accepts the same values as LLMRECIPES_TIMEOUT.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}

	var durations struct {
		Timeout yaml.Node `yaml:"timeout"`
	}
	if err := value.Decode(&durations); err != nil {
		return err
	}
	if v := strings.TrimSpace(durations.Timeout.Value); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// parseDuration accepts Go durations ("90s", "2m") and whole seconds ("90").
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks the provider name and numeric settings.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderOpenAI, ProviderHuggingFace:
	default:
		return fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownProvider, c.Provider, ProviderOpenAI, ProviderHuggingFace)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max retries must not be negative, got %d", c.MaxRetries)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Active returns the settings of the selected provider.
func (c *Config) Active() ProviderConfig {
	if c.Provider == ProviderOpenAI {
		return c.OpenAI
	}
	return c.HuggingFace
}

// RequireAPIKey returns ErrMissingAPIKey when the active provider has no key.
func (c *Config) RequireAPIKey() error {
	active := c.Active()
	if active.APIKey == "" {
		return fmt.Errorf("%w: set %s for provider %s", ErrMissingAPIKey, active.KeyVariable, active.Name)
	}
	return nil
}

// ClientConfig converts p into the OpenAI-compatible client settings shared by
// both backends.
func (p ProviderConfig) ClientConfig() openai.Config {
	return openai.Config{
		Name:           p.Name,
		APIKey:         p.APIKey,
		BaseURL:        p.BaseURL,
		Model:          p.Model,
		EmbeddingModel: p.EmbeddingModel,
	}
}

// MaskAPIKey hides most of key for display. OpenAI style keys keep the "sk-"
// prefix with four more characters and the last four; other keys keep their
// first ten characters.
func MaskAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case strings.HasPrefix(key, "sk-") && len(key) > 11:
		return key[:7] + strings.Repeat("*", len(key)-11) + key[len(key)-4:]
	case len(key) > 10:
		return key[:10] + "..."
	default:
		return strings.Repeat("*", len(key))
	}
}
