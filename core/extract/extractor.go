package extract

// Extractor is a single extraction strategy. Extract reports false when the
// strategy cannot produce a record from raw, letting a [CompositeExtractor]
// move on to the next strategy. Implementations must be pure: the same input
// always yields the same output.
type Extractor interface {
	Extract(raw string) (Result, bool)
}

// ExtractorFunc adapts an ordinary function to the Extractor interface.
type ExtractorFunc func(raw string) (Result, bool)

// Extract calls f(raw).
func (f ExtractorFunc) Extract(raw string) (Result, bool) {
	return f(raw)
}

// CompositeExtractor tries its strategies in order and returns the first
// successful result.
type CompositeExtractor struct {
	extractors []Extractor
}

// NewComposite builds a CompositeExtractor over the given strategies. Nil
// entries are skipped.
func NewComposite(extractors ...Extractor) *CompositeExtractor {
	chain := make([]Extractor, 0, len(extractors))
	for _, e := range extractors {
		if e != nil {
			chain = append(chain, e)
		}
	}
	return &CompositeExtractor{extractors: chain}
}

// Extract always succeeds. When every strategy declines, the default record
// is returned with ProvenanceDefault.
func (c *CompositeExtractor) Extract(raw string) (Result, bool) {
	for _, e := range c.extractors {
		if result, ok := e.Extract(raw); ok {
			return result, true
		}
	}
	return Result{Record: DefaultRecord(), Provenance: ProvenanceDefault}, true
}

// Run is Extract without the always-true flag.
func (c *CompositeExtractor) Run(raw string) Result {
	result, _ := c.Extract(raw)
	return result
}

var defaultChain = Default()

// Default returns the standard two-tier chain: strict JSON first, then the
// regex fallback.
func Default() *CompositeExtractor {
	return NewComposite(NewStrictJSONExtractor(), NewRegexFallbackExtractor())
}

// Extract runs the default chain and returns only the record.
func Extract(raw string) Record {
	return defaultChain.Run(raw).Record
}

// ExtractResult runs the default chain and returns the record with its
// provenance.
func ExtractResult(raw string) Result {
	return defaultChain.Run(raw)
}
