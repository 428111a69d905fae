// Package llm provides chat completion against a local or remote model
// endpoint. The answer pipeline depends only on the Completer interface, so
// tests can substitute a canned model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"localfind/internal/config"
)

// ErrUnavailable reports that the model endpoint could not be reached or
// refused the request.
var ErrUnavailable = errors.New("chat model unavailable")

// Completer turns a system prompt and a user message into a completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// New builds a Completer for the configured chat provider.
func New(cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case "ollama":
		model, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return &langchainCompleter{model: model}, nil
	case "openai":
		model, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return &langchainCompleter{model: model}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

type langchainCompleter struct {
	model llms.Model
}

func (c *langchainCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	log.Debug().Int("choices", len(resp.Choices)).Msg("chat completion received")
	return resp.Choices[0].Content, nil
}
