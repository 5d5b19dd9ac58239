// Package llm wraps the external language-model providers behind a single
// interface so callers can chain them without knowing which vendor answered.
package llm

import "context"

// ReplyProvider generates a free-text reply from a fully built prompt.
// Implementations must honor ctx cancellation and return an error rather
// than blocking past the deadline.
type ReplyProvider interface {
	// Name identifies the provider in logs ("openai", "gemini").
	Name() string
	GenerateReply(ctx context.Context, prompt string) (string, error)
}
