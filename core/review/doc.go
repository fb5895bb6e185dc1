// Package review turns free-text product reviews into a summary and a
// sentiment label using a chat model.
//
// [Analyzer.Analyze] asks the model for a JSON object in plain text and
// recovers the record with the two-tier extractor from core/extract, so it
// works with models that ignore formatting instructions.
// [Analyzer.AnalyzeStructured] requests JSON output from the provider and
// decodes it directly, falling back to the extractor when the answer is not
// usable. [Analyzer.AnalyzeBatch] runs many reviews on a bounded worker pool.
package review
