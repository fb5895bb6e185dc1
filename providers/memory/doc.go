// Package memory defines the Provider interface used by chat sessions to keep
// conversation history between turns.
//
// History is stored as [ai.Message] values in the order they were appended.
// The in-process implementation lives in
// [github.com/leofalp/llmrecipes/providers/memory/inmemory].
package memory
