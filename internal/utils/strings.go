package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultMaxStringLength is the default maximum length for truncated strings
	DefaultMaxStringLength = 500

	// DefaultVectorPreview is how many leading components PreviewVector shows.
	DefaultVectorPreview = 5
)

// JSONToString renders object as JSON, pretty-printed with two-space indent
// when indent is true. On failure it returns a JSON error object instead, so
// the result is always printable.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen bytes and records the original
// length in a suffix. A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// PreviewVector formats the first n components of v, e.g.
// "[0.0123, -0.4567, ...] (dim=384)". A non-positive n means
// DefaultVectorPreview.
func PreviewVector(v []float32, n int) string {
	if n <= 0 {
		n = DefaultVectorPreview
	}
	shown := min(n, len(v))

	parts := make([]string, 0, shown+1)
	for _, x := range v[:shown] {
		parts = append(parts, strconv.FormatFloat(float64(x), 'f', 4, 32))
	}
	if len(v) > shown {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("[%s] (dim=%d)", strings.Join(parts, ", "), len(v))
}
