// cmd/verifact/client.go
package main

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ModelClient is the single boundary to the language-model SDK. Everything
// above it works with plain text and the error taxonomy from error.go.
type ModelClient interface {
	// GenerateContent sends one text prompt to the named model and returns
	// the response text.
	GenerateContent(ctx context.Context, model, prompt string) (string, error)

	// ListGenerationModels returns the identifiers of models that support
	// content generation. This call consumes quota; callers should prefer
	// the resolution cache hierarchy.
	ListGenerationModels(ctx context.Context) ([]string, error)
}

// openAIClient implements ModelClient over the OpenAI API.
type openAIClient struct {
	api *openai.Client
}

// NewModelClient creates a ModelClient for the given API key.
func NewModelClient(apiKey string) ModelClient {
	return &openAIClient{api: openai.NewClient(apiKey)}
}

// GenerateContent performs a single chat completion from one user message.
func (c *openAIClient) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.2, // Low temperature for more consistent results
		},
	)
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// ListGenerationModels lists the account's models filtered to the ones that
// can generate content.
func (c *openAIClient) ListGenerationModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var models []string
	for _, m := range list.Models {
		if supportsGeneration(m.ID) {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

// supportsGeneration reports whether a model identifier names a chat-capable
// model, filtering out embedding, audio, image, and moderation models.
func supportsGeneration(id string) bool {
	if !strings.HasPrefix(id, "gpt-") {
		return false
	}
	for _, skip := range []string{"instruct", "embedding", "audio", "realtime"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return true
}

// extractText normalizes whatever the SDK returns into plain response text.
func extractText(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
