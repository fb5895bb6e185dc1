package extract

import (
	"regexp"
	"strings"
)

var (
	summaryCue   = regexp.MustCompile(`(?i)summary["':\s]*([^"\n}]+)`)
	sentimentCue = regexp.MustCompile(`(?i)sentiment["':\s]*([^"\n}]+)`)
)

// RegexFallbackExtractor recovers fields by locating the literal cues
// "summary" and "sentiment" (any case) in the raw text and capturing the run
// of characters that follows, up to the next double quote, newline or closing
// brace. A cue followed only by whitespace or quotes is treated as missing.
// It never declines.
type RegexFallbackExtractor struct {
	defaultSummary   string
	defaultSentiment string
}

// FallbackOption customizes a RegexFallbackExtractor.
type FallbackOption func(*RegexFallbackExtractor)

// WithDefaultSummary overrides the placeholder used for a missing summary.
func WithDefaultSummary(summary string) FallbackOption {
	return func(e *RegexFallbackExtractor) {
		e.defaultSummary = summary
	}
}

// WithDefaultSentiment overrides the placeholder used for a missing sentiment.
func WithDefaultSentiment(sentiment string) FallbackOption {
	return func(e *RegexFallbackExtractor) {
		e.defaultSentiment = sentiment
	}
}

// NewRegexFallbackExtractor returns the fallback tier.
func NewRegexFallbackExtractor(opts ...FallbackOption) *RegexFallbackExtractor {
	e := &RegexFallbackExtractor{
		defaultSummary:   DefaultSummary,
		defaultSentiment: DefaultSentiment,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements Extractor. The returned flag is always true.
func (e *RegexFallbackExtractor) Extract(raw string) (Result, bool) {
	summary, foundSummary := matchCue(summaryCue, raw)
	sentiment, foundSentiment := matchCue(sentimentCue, raw)

	if !foundSummary {
		summary = e.defaultSummary
	}
	if !foundSentiment {
		sentiment = e.defaultSentiment
	}

	provenance := ProvenanceFallback
	if !foundSummary && !foundSentiment {
		provenance = ProvenanceDefault
	}

	return Result{
		Record:     Record{Summary: summary, Sentiment: sentiment},
		Provenance: provenance,
	}, true
}

// matchCue returns the cleaned value following cue. A value that cleans down
// to nothing counts as not found.
func matchCue(cue *regexp.Regexp, raw string) (string, bool) {
	match := cue.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	value := cleanCapture(match[1])
	return value, value != ""
}

// cleanCapture trims whitespace, then any surrounding single or double quotes.
func cleanCapture(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
