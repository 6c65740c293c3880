package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	apiKey *memguard.Enclave
	model  string
}

func NewOpenAIClient() (*OpenAIClient, error) {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}

	apiKey, err := loadAPIKey("OPENAI_API_KEY", "/run/secrets/openai_api_key")
	if err != nil {
		return nil, err
	}

	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Generate implements the LLMClient interface
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via OpenAI", "model", o.model)

	systemRoleContent := os.Getenv("CHAT_SYSTEM_PROMPT")
	if systemRoleContent == "" {
		systemRoleContent = "You are a helpful assistant."
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRoleContent},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	// The backend client is built per call so the key is only unsealed for
	// the duration of the request.
	var resp openai.ChatCompletionResponse
	err := withAPIKey(o.apiKey, func(key string) error {
		var callErr error
		resp, callErr = openai.NewClient(key).CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
