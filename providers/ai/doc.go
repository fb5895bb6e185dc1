// Package ai defines the provider-agnostic types shared by every model
// backend: chat requests and responses, message roles, token usage, and the
// [Provider] and [Embedder] interfaces. Backends adapt these to their own
// client libraries, keeping the rest of the module independent of any one
// vendor.
package ai
