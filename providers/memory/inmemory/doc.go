// Package inmemory provides a concurrency-safe, slice-backed [memory.Provider]
// for single-process chat sessions. History is lost when the process exits.
package inmemory
