package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

type GeminiClient struct {
	apiKey *memguard.Enclave
	model  string
}

func NewGeminiClient() (*GeminiClient, error) {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-pro-latest"
		slog.Warn("GEMINI_MODEL not set, defaulting to gemini-1.5-pro-latest")
	}

	apiKey, err := loadAPIKey("GEMINI_API_KEY", "/run/secrets/gemini_api_key")
	if err != nil {
		return nil, err
	}

	slog.Info("Initializing Gemini client", "model", model)
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Generate implements the LLMClient interface
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via Gemini", "model", g.model)

	opts := []llms.CallOption{}
	if params.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.TopK != nil {
		opts = append(opts, llms.WithTopK(*params.TopK))
	}
	if params.TopP != nil {
		opts = append(opts, llms.WithTopP(float64(*params.TopP)))
	}
	if params.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}

	// The backend client is built per call so the key is only unsealed for
	// the duration of the request.
	var out string
	err := withAPIKey(g.apiKey, func(key string) error {
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(key),
			googleai.WithDefaultModel(g.model),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini backend: %w", err)
		}
		out, err = llms.GenerateFromSinglePrompt(ctx, client, prompt, opts...)
		if err != nil {
			return fmt.Errorf("Gemini API call failed: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.Error("Gemini generation failed", "error", err)
		return "", err
	}

	slog.Debug("Received response from Gemini")
	return out, nil
}
