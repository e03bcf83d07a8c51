// Package llm provides the language-model generation capability.
package llm

import "context"

// Generator produces text completions for a prompt. Generate may block for
// seconds; implementations must honor ctx cancellation. Retry policy belongs
// to the caller, not the implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
	Close() error
}
