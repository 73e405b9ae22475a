package analysis

import "context"

// Prompt is the instruction pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// Model submits a prompt to the external generative model and returns its raw text.
// Implementations return ErrMissingCredentials before any network I/O when no key is set.
type Model interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// PromptBuilder renders a request into a prompt. Must be deterministic.
type PromptBuilder interface {
	Build(req Request) Prompt
}
