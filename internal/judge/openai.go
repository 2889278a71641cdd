// internal/judge/openai.go
package judge

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const xaiBaseURL = "https://api.x.ai/v1"

// openaiProvider serves any OpenAI-compatible chat completions endpoint,
// which covers both OpenAI proper and xAI's Grok models.
type openaiProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func newOpenAI(cfg *Config) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	case strings.Contains(strings.ToLower(cfg.Model), "grok"):
		clientCfg.BaseURL = xaiBaseURL
	}

	return &openaiProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (p *openaiProvider) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
