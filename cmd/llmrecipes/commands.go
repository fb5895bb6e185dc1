package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/leofalp/llmrecipes/core/chat"
	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/core/extract"
	"github.com/leofalp/llmrecipes/core/review"
	"github.com/leofalp/llmrecipes/internal/config"
	"github.com/leofalp/llmrecipes/internal/logging"
	"github.com/leofalp/llmrecipes/internal/textsource"
	"github.com/leofalp/llmrecipes/internal/utils"
	"github.com/leofalp/llmrecipes/providers/ai"
	"github.com/leofalp/llmrecipes/providers/memory/inmemory"
)

const (
	checkKeyPrompt    = "Say 'Hello, API is working!' and nothing else."
	checkKeyMaxTokens = 10
	vectorPreviewLen  = 5
)

func sources(c *cli.Context) []string {
	if c.Args().Len() == 0 {
		return []string{textsource.Stdin}
	}
	return c.Args().Slice()
}

func (r *recipes) reader(c *cli.Context) textsource.Reader {
	return textsource.Reader{Stdin: c.App.Reader, Timeout: r.cfg.Timeout}
}

func (r *recipes) extractCommand(c *cli.Context) error {
	docs, err := r.reader(c).ReadAll(c.Context, sources(c))
	if err != nil {
		return err
	}

	results := make([]extract.Result, len(docs))
	for i, doc := range docs {
		results[i] = extract.ExtractResult(doc.Text)
	}

	out := c.App.Writer
	if c.Bool("json") {
		if len(results) == 1 {
			fmt.Fprintln(out, utils.JSONToString(results[0], true))
		} else {
			fmt.Fprintln(out, utils.JSONToString(results, true))
		}
		return nil
	}
	for i, res := range results {
		if len(results) > 1 {
			fmt.Fprintf(out, "== %s ==\n", docs[i].Source)
		}
		printResult(out, res)
	}
	return nil
}

func printResult(w io.Writer, res extract.Result) {
	fmt.Fprintf(w, "Summary: %s\n", res.Record.Summary)
	fmt.Fprintf(w, "Sentiment: %s\n", res.Record.Sentiment)
	if res.Provenance != extract.ProvenanceStrict {
		fmt.Fprintf(w, "(extracted via %s)\n", res.Provenance)
	}
}

func (r *recipes) reviewCommand(c *cli.Context) error {
	docs, err := r.reader(c).ReadAll(c.Context, sources(c))
	if err != nil {
		return err
	}
	cl, err := r.client()
	if err != nil {
		return err
	}
	analyzer, err := review.NewAnalyzer(cl,
		review.WithWorkers(c.Int("workers")),
		review.WithLogger(logging.Component(r.logger, "review")),
	)
	if err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var outcomes []review.Outcome
	if c.Bool("structured") {
		outcomes, err = analyzer.AnalyzeBatchStructured(c.Context, texts)
	} else {
		outcomes, err = analyzer.AnalyzeBatch(c.Context, texts)
	}
	if err != nil {
		return err
	}

	out := c.App.Writer
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	if c.Bool("json") {
		if len(outcomes) == 1 {
			fmt.Fprintln(out, utils.JSONToString(outcomes[0], true))
		} else {
			fmt.Fprintln(out, utils.JSONToString(outcomes, true))
		}
	} else {
		for i, o := range outcomes {
			if len(outcomes) > 1 {
				fmt.Fprintf(out, "== %s ==\n", docs[i].Source)
			}
			printResult(out, o.Result)
			if o.Err != nil {
				fmt.Fprintf(out, "error: %v\n", o.Err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d reviews failed", failed, len(outcomes))
	}
	return nil
}

func (r *recipes) askCommand(c *cli.Context) error {
	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" {
		return errors.New("ask: a prompt is required")
	}

	var opts []func(*client.ClientOptions)
	if s := c.String("system"); s != "" {
		opts = append(opts, client.WithSystemPrompt(s))
	}
	cl, err := r.client(opts...)
	if err != nil {
		return err
	}

	resp, err := cl.Ask(c.Context, prompt, client.WithGeneration(ai.GenerationConfig{
		Temperature: c.Float64("temperature"),
		MaxTokens:   c.Int("max-tokens"),
	}))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, resp.Content)
	return nil
}

func (r *recipes) chatCommand(c *cli.Context) error {
	cl, err := r.client()
	if err != nil {
		return err
	}
	store := inmemory.New(
		inmemory.WithMaxMessages(c.Int("max-history")),
		inmemory.WithLogger(logging.Component(r.logger, "memory")),
	)
	session, err := chat.NewSession(cl,
		chat.WithSystemPrompt(c.String("system")),
		chat.WithMemory(store),
		chat.WithHistoryWindow(c.Int("window")),
		chat.WithLogger(r.logger),
	)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Chat started (type %q to quit)\n", chat.ExitCommand)
	scanner := bufio.NewScanner(c.App.Reader)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		input := scanner.Text()
		if chat.IsExitCommand(input) {
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		resp, err := session.Send(c.Context, input)
		if err != nil {
			if c.Context.Err() != nil {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "AI: %s\n", resp.Content)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	history, err := session.History(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nConversation history (%d messages):\n", len(history))
	for _, m := range history {
		fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

func (r *recipes) embedCommand(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New("embed: text is required")
	}
	embedder, err := r.embedder()
	if err != nil {
		return err
	}

	var vectors [][]float32
	if c.Bool("documents") {
		vectors, err = embedder.EmbedDocuments(c.Context, c.Args().Slice())
	} else {
		var v []float32
		v, err = embedder.EmbedQuery(c.Context, strings.Join(c.Args().Slice(), " "))
		vectors = [][]float32{v}
	}
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("full") {
		fmt.Fprintln(out, utils.JSONToString(vectors))
		return nil
	}
	for i, v := range vectors {
		fmt.Fprintf(out, "%d: %s\n", i, utils.PreviewVector(v, vectorPreviewLen))
	}
	return nil
}

// checkKeyCommand sends a tiny completion and explains the most common
// failures. Quota errors are not retried, so they surface here directly.
func (r *recipes) checkKeyCommand(c *cli.Context) error {
	out := c.App.Writer
	active := r.cfg.Active()

	fmt.Fprintf(out, "Provider: %s\n", active.Name)
	fmt.Fprintf(out, "API key (%s): %s\n", active.KeyVariable, config.MaskAPIKey(active.APIKey))
	if active.APIKey == "" {
		return r.cfg.RequireAPIKey()
	}
	if active.Name == config.ProviderOpenAI && !strings.HasPrefix(active.APIKey, "sk-") {
		fmt.Fprintln(out, "warning: OpenAI keys usually start with 'sk-'")
	}

	cl, err := r.client()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Sending test request...")
	resp, err := cl.Ask(c.Context, checkKeyPrompt, client.WithGeneration(ai.GenerationConfig{MaxTokens: checkKeyMaxTokens}))
	if err != nil {
		fmt.Fprintf(out, "FAILED: %s\n", diagnoseKeyError(err))
		return err
	}
	fmt.Fprintf(out, "OK: %s\n", strings.TrimSpace(resp.Content))
	return nil
}

func diagnoseKeyError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "exceeded your current quota"):
		return "insufficient quota/credits; check the billing settings of the account"
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "incorrect api key") || strings.Contains(msg, "401"):
		return "invalid API key"
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return "rate limited; try again later"
	default:
		return "unexpected error"
	}
}
