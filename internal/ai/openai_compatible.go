package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"answerbridge/internal/config"
)

// OpenAICompatibleClient talks to any endpoint that serves the OpenAI chat
// completions API.
type OpenAICompatibleClient struct {
	llm *openai.LLM
}

func NewOpenAICompatibleClient(cfg config.LLMConfig) (*OpenAICompatibleClient, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("build openai client failed: %w", err)
	}
	return &OpenAICompatibleClient{llm: llm}, nil
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, question string) (string, error) {
	content, err := llms.GenerateFromSinglePrompt(ctx, c.llm, question)
	if err != nil {
		return "", &RemoteCallError{Provider: config.ProviderOpenAI, Err: err}
	}
	return strings.TrimSpace(content), nil
}
