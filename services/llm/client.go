// Package llm abstracts the model backends that answer deadlock questions.
// The active backend is chosen at startup from LLM_BACKEND_TYPE and every
// implementation satisfies LLMClient, so handlers never know which vendor
// is behind a response.
package llm

import "context"

// GenerationParams carries optional sampling knobs. A nil field means the
// backend's own default applies.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
