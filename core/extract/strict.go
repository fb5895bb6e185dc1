package extract

import (
	"encoding/json"
	"regexp"
)

// objectPattern matches a single-level JSON object. Objects containing nested
// braces never match as a whole; the inner object may match instead and is
// then rejected by the key check.
var objectPattern = regexp.MustCompile(`\{[^{}]*\}`)

// StrictJSONExtractor decodes the first single-level JSON object embedded in
// the text. It declines when no object is found, the object is not valid
// JSON, or either field is missing or not a string. String values are kept
// verbatim, including empty ones.
type StrictJSONExtractor struct{}

// NewStrictJSONExtractor returns the strict tier.
func NewStrictJSONExtractor() *StrictJSONExtractor {
	return &StrictJSONExtractor{}
}

// Extract implements Extractor.
func (StrictJSONExtractor) Extract(raw string) (Result, bool) {
	candidate := objectPattern.FindString(raw)
	if candidate == "" {
		return Result{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Result{}, false
	}

	summary, ok := stringField(fields, "summary")
	if !ok {
		return Result{}, false
	}
	sentiment, ok := stringField(fields, "sentiment")
	if !ok {
		return Result{}, false
	}

	return Result{
		Record:     Record{Summary: summary, Sentiment: sentiment},
		Provenance: ProvenanceStrict,
	}, true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	value, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", false
	}
	return s, true
}
