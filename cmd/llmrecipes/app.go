package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/leofalp/llmrecipes/core/chat"
	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/core/client/middleware"
	"github.com/leofalp/llmrecipes/internal/config"
	"github.com/leofalp/llmrecipes/internal/logging"
	"github.com/leofalp/llmrecipes/providers/ai"
	"github.com/leofalp/llmrecipes/providers/ai/huggingface"
	"github.com/leofalp/llmrecipes/providers/ai/openai"
)

// recipes holds the state shared by the commands once flags are parsed.
// The constructors are fields so tests can swap in fakes.
type recipes struct {
	cfg    *config.Config
	logger *slog.Logger

	newProvider func(config.ProviderConfig) (ai.Provider, error)
	newEmbedder func(config.ProviderConfig) (ai.Embedder, error)
}

func newRecipes() *recipes {
	return &recipes{
		newProvider: defaultProvider,
		newEmbedder: defaultEmbedder,
	}
}

func defaultProvider(p config.ProviderConfig) (ai.Provider, error) {
	switch p.Name {
	case config.ProviderOpenAI:
		return openai.New(p.ClientConfig())
	case config.ProviderHuggingFace:
		return huggingface.New(p.ClientConfig())
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, p.Name)
	}
}

func defaultEmbedder(p config.ProviderConfig) (ai.Embedder, error) {
	switch p.Name {
	case config.ProviderOpenAI:
		return openai.NewEmbedder(p.ClientConfig())
	case config.ProviderHuggingFace:
		return huggingface.NewEmbedder(p.ClientConfig())
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, p.Name)
	}
}

func (r *recipes) cliApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "llmrecipes",
		Usage:     "Language model recipes: structured review analysis, chat, embeddings",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` (default: ./.env when present)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Read settings from a YAML `FILE`; environment variables still win",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set log format (text, json)",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Model backend (huggingface, openai)",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Override the chat model of the selected provider",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract a summary and sentiment from raw model output, offline",
				ArgsUsage: "[FILE|-]...",
				Action:    r.extractCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
				},
			},
			{
				Name:      "review",
				Usage:     "Analyze product reviews into a summary and sentiment",
				ArgsUsage: "[FILE|URL|-]...",
				Action:    r.reviewCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "structured", Aliases: []string{"s"}, Usage: "Ask the provider for JSON output instead of parsing free text"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Reviews analyzed concurrently", Value: 4},
					&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
				},
			},
			{
				Name:      "ask",
				Usage:     "Send one prompt and print the answer",
				ArgsUsage: "PROMPT...",
				Action:    r.askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "system", Usage: "System prompt"},
					&cli.Float64Flag{Name: "temperature", Usage: "Sampling temperature", Value: 0.7},
					&cli.IntFlag{Name: "max-tokens", Usage: "Maximum answer length in tokens"},
				},
			},
			{
				Name:   "chat",
				Usage:  "Chat interactively; type exit to quit",
				Action: r.chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "system", Usage: "System prompt", Value: chat.DefaultSystemPrompt},
					&cli.IntFlag{Name: "window", Usage: "Previous messages sent with each turn (0 = all)"},
					&cli.IntFlag{Name: "max-history", Usage: "Messages kept in the conversation history; older ones are dropped (0 = unbounded)"},
				},
			},
			{
				Name:      "embed",
				Usage:     "Print embedding vectors for text",
				ArgsUsage: "TEXT...",
				Action:    r.embedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "documents", Aliases: []string{"d"}, Usage: "Embed each argument as a separate document"},
					&cli.BoolFlag{Name: "full", Usage: "Print whole vectors as JSON"},
				},
			},
			{
				Name:   "check-key",
				Usage:  "Verify the API key of the selected provider",
				Action: r.checkKeyCommand,
			},
		},
	}
}

// setup loads the configuration, applies the global flag overrides and
// installs the logger.
func (r *recipes) setup(c *cli.Context) error {
	cfg, err := config.LoadFile(c.String("config"), c.StringSlice("env-file")...)
	if err != nil {
		return err
	}

	if p := c.String("provider"); p != "" {
		cfg.Provider = p
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if f := c.String("log-format"); f != "" {
		cfg.LogFormat = f
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if m := c.String("model"); m != "" {
		switch cfg.Provider {
		case config.ProviderOpenAI:
			cfg.OpenAI.Model = m
		default:
			cfg.HuggingFace.Model = m
		}
	}

	logger, err := logging.Setup(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	r.cfg = cfg
	r.logger = logger
	return nil
}

// client builds a client for the active provider with logging, retry and
// timeout middleware, in that order.
func (r *recipes) client(opts ...func(*client.ClientOptions)) (*client.Client, error) {
	if err := r.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	active := r.cfg.Active()
	provider, err := r.newProvider(active)
	if err != nil {
		return nil, err
	}

	logLevel := middleware.LogLevelStandard
	if lvl, _ := logging.ParseLevel(r.cfg.LogLevel); lvl <= slog.LevelDebug {
		logLevel = middleware.LogLevelVerbose
	}
	maxRetries := r.cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}

	base := []func(*client.ClientOptions){
		client.WithDefaultModel(active.Model),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(logging.Component(r.logger, "llm"), logLevel),
			middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: maxRetries, Logger: r.logger}),
			middleware.NewTimeoutMiddleware(r.cfg.Timeout),
		),
	}
	return client.New(provider, append(base, opts...)...)
}

func (r *recipes) embedder() (ai.Embedder, error) {
	if err := r.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return r.newEmbedder(r.cfg.Active())
}
