package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"answerbridge/internal/config"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("build gemini client failed: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, question string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(question), nil)
	if err != nil {
		return "", &RemoteCallError{Provider: config.ProviderGemini, Err: err}
	}
	if len(resp.Candidates) == 0 {
		return "", &RemoteCallError{Provider: config.ProviderGemini, Err: errors.New("empty candidates")}
	}
	return strings.TrimSpace(resp.Text()), nil
}
