// Package parse decodes raw model text into typed Go values. Models that
// were asked for JSON still wrap it in Markdown fences, emit slightly broken
// syntax, or echo a schema-style {"type": ..., "value": ...} envelope instead
// of the value itself, so decoding is layered: fence stripping, strict
// decoding, repair with jsonrepair, then envelope unwrapping.
//
// The entry point is the generic [ParseStringAs].
package parse
