package extract

const (
	// DefaultSummary is used when no summary can be recovered from the text.
	DefaultSummary = "Unable to extract summary"

	// DefaultSentiment is used when no sentiment can be recovered from the text.
	DefaultSentiment = "neutral"
)

// Record is the structured result of a review analysis. Sentiment is expected
// to be one of "positive", "negative" or "neutral" but is not validated.
type Record struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

// DefaultRecord returns the placeholder record produced when nothing could be
// extracted.
func DefaultRecord() Record {
	return Record{
		Summary:   DefaultSummary,
		Sentiment: DefaultSentiment,
	}
}

// Provenance describes how a Record was obtained.
type Provenance string

const (
	// ProvenanceStrict means the record was decoded from a JSON object in the text.
	ProvenanceStrict Provenance = "strict"
	// ProvenanceFallback means at least one field was recovered by cue matching.
	ProvenanceFallback Provenance = "fallback"
	// ProvenanceDefault means both fields are placeholders.
	ProvenanceDefault Provenance = "default"
)

// Result pairs an extracted Record with its Provenance.
type Result struct {
	Record     Record     `json:"record"`
	Provenance Provenance `json:"provenance"`
}
