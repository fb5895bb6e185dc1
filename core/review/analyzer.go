package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/leofalp/llmrecipes/core/client"
	"github.com/leofalp/llmrecipes/core/extract"
	"github.com/leofalp/llmrecipes/core/parse"
	"github.com/leofalp/llmrecipes/providers/ai"
)

const (
	// ErrorSummary is the summary reported when the model could not be reached.
	ErrorSummary = "Error processing review"

	// DefaultWorkers is the number of reviews AnalyzeBatch runs at once.
	DefaultWorkers = 4
)

var (
	// ErrEmptyReview is returned for a blank review.
	ErrEmptyReview = errors.New("review: review text is empty")

	// ErrNilClient is returned by NewAnalyzer when no client is given.
	ErrNilClient = errors.New("review: client is nil")
)

// DefaultGeneration keeps answers short and close to deterministic.
var DefaultGeneration = ai.GenerationConfig{Temperature: 0.1, MaxTokens: 300}

// ErrorRecord is the record reported when the model call fails.
func ErrorRecord() extract.Record {
	return extract.Record{Summary: ErrorSummary, Sentiment: extract.DefaultSentiment}
}

// Outcome is the analysis of one review. Err is set when the model call
// failed; Result then holds ErrorRecord.
type Outcome struct {
	Result extract.Result `json:"result"`
	Raw    string         `json:"raw,omitempty"`
	Err    error          `json:"-"`
}

// Record returns the extracted record.
func (o Outcome) Record() extract.Record {
	return o.Result.Record
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractor replaces the default strict-then-fallback extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(a *Analyzer) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithLogger sets the logger for analysis events. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWorkers bounds the concurrency of AnalyzeBatch.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithGeneration overrides DefaultGeneration.
func WithGeneration(cfg ai.GenerationConfig) Option {
	return func(a *Analyzer) {
		a.generation = cfg
	}
}

// WithPromptTemplate replaces DefaultPromptTemplate. The template must use
// {{.review}} for the review text.
func WithPromptTemplate(text string) Option {
	return func(a *Analyzer) {
		a.promptText = text
	}
}

// Analyzer extracts review records with a chat model. It is safe for
// concurrent use.
type Analyzer struct {
	client     *client.Client
	extractor  extract.Extractor
	logger     *slog.Logger
	workers    int
	generation ai.GenerationConfig
	promptText string

	prompt     prompts.PromptTemplate
	structured prompts.PromptTemplate
}

// NewAnalyzer builds an Analyzer that sends requests through c.
func NewAnalyzer(c *client.Client, opts ...Option) (*Analyzer, error) {
	if c == nil {
		return nil, ErrNilClient
	}

	a := &Analyzer{
		client:     c,
		extractor:  extract.Default(),
		logger:     slog.Default().With(slog.String("component", "review")),
		workers:    DefaultWorkers,
		generation: DefaultGeneration,
		promptText: DefaultPromptTemplate,
	}
	for _, opt := range opts {
		opt(a)
	}

	var err error
	if a.prompt, err = newTemplate(a.promptText); err != nil {
		return nil, err
	}
	if a.structured, err = newTemplate(StructuredPromptTemplate); err != nil {
		return nil, err
	}
	return a, nil
}

// Analyze asks the model for a JSON answer in free text and extracts the
// record from whatever comes back. A failed model call yields an Outcome
// holding ErrorRecord together with the error.
func (a *Analyzer) Analyze(ctx context.Context, review string) (Outcome, error) {
	if strings.TrimSpace(review) == "" {
		return errorOutcome(ErrEmptyReview), ErrEmptyReview
	}

	prompt, err := render(a.prompt, review)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := a.client.Ask(ctx, prompt, client.WithGeneration(a.generation))
	if err != nil {
		return a.failed(ctx, err)
	}

	outcome := Outcome{Result: a.extract(resp.Content), Raw: resp.Content}
	a.logger.DebugContext(ctx, "review analyzed",
		slog.String("provenance", string(outcome.Result.Provenance)),
		slog.String("sentiment", outcome.Result.Record.Sentiment),
	)
	return outcome, nil
}

// AnalyzeStructured requests a JSON object from the provider and decodes it
// into a record. When the answer cannot be decoded or lacks a field, the
// extractor is run on the raw text instead.
func (a *Analyzer) AnalyzeStructured(ctx context.Context, review string) (Outcome, error) {
	if strings.TrimSpace(review) == "" {
		return errorOutcome(ErrEmptyReview), ErrEmptyReview
	}

	prompt, err := render(a.structured, review)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := a.client.Ask(ctx, prompt,
		client.WithGeneration(a.generation),
		client.WithJSONResponse(),
	)
	if err != nil {
		return a.failed(ctx, err)
	}

	record, err := parse.ParseStringAs[extract.Record](resp.Content)
	if err == nil && record.Summary != "" && record.Sentiment != "" {
		return Outcome{
			Result: extract.Result{Record: record, Provenance: extract.ProvenanceStrict},
			Raw:    resp.Content,
		}, nil
	}

	a.logger.DebugContext(ctx, "structured answer unusable, falling back to extractor",
		slog.Any("decode_error", err),
	)
	return Outcome{Result: a.extract(resp.Content), Raw: resp.Content}, nil
}

func (a *Analyzer) extract(raw string) extract.Result {
	result, ok := a.extractor.Extract(raw)
	if !ok {
		return extract.Result{Record: extract.DefaultRecord(), Provenance: extract.ProvenanceDefault}
	}
	return result
}

func (a *Analyzer) failed(ctx context.Context, err error) (Outcome, error) {
	err = fmt.Errorf("analyze review: %w", err)
	a.logger.ErrorContext(ctx, "review analysis failed", slog.String("error", err.Error()))
	return errorOutcome(err), err
}

// errorOutcome is the Outcome of a review that produced no usable answer.
func errorOutcome(err error) Outcome {
	return Outcome{
		Result: extract.Result{Record: ErrorRecord(), Provenance: extract.ProvenanceDefault},
		Err:    err,
	}
}
