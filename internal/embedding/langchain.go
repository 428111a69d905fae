package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"localfind/internal/config"
)

// langchainEmbedder adapts a langchaingo embedder to the Embedder interface,
// mapping transport failures to ErrUnavailable.
type langchainEmbedder struct {
	impl *embeddings.EmbedderImpl
}

func newOllama(cfg config.LLMConfig) (Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedder: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &langchainEmbedder{impl: impl}, nil
}

func newOpenAI(cfg config.LLMConfig) (Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init openai embedder: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &langchainEmbedder{impl: impl}, nil
}

func (e *langchainEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

func (e *langchainEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrUnavailable, len(texts), len(vecs))
	}
	return vecs, nil
}
