package ai

import (
	"context"
	"fmt"

	"answerbridge/internal/config"
)

// Completer turns a single-turn prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
}

// RemoteCallError wraps every failure of the remote completion call.
type RemoteCallError struct {
	Provider string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the caller.
func (e *RemoteCallError) Message() string {
	return "Completion API error: " + e.Err.Error()
}

// New builds the client for cfg.Provider. Credentials come only from cfg;
// clients never read the environment on their own.
func New(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAICompatibleClient(cfg)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
