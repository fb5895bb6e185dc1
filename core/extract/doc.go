// Package extract recovers a two-field review record (summary, sentiment)
// from free text produced by a language model that was asked to answer in
// JSON. Model output is unreliable: the object may be wrapped in prose,
// malformed, nested, or missing altogether, so extraction is best-effort and
// total. Every call yields a fully populated [Record]; nothing is ever
// returned as an error.
//
// Extraction is a chain of [Extractor] strategies. [Default] builds the
// standard chain: [StrictJSONExtractor] looks for an embedded single-level
// JSON object, and [RegexFallbackExtractor] scans the raw text for
// "summary" / "sentiment" cues, substituting placeholders for anything it
// cannot find. The strict tier reports exactly what the model wrote, so a
// decoded object may carry an empty field; the fallback tier never does. A
// [Result] carries the [Provenance] of the record so callers can branch on
// how reliable it is.
package extract
