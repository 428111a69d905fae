// Package rag answers questions from indexed document chunks. It retrieves
// the nearest chunks for a question, assembles them into a grounded prompt,
// and returns the model's answer together with the citations it was given.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"localfind/internal/config"
	"localfind/internal/embedding"
	"localfind/internal/llm"
	"localfind/internal/vecstore"
)

// ErrInsufficient reports that nothing in the index is similar enough to the
// question to ground an answer. Callers should surface this instead of
// letting the model guess.
var ErrInsufficient = errors.New("no indexed content is relevant enough to answer")

const systemPrompt = `You are a local document assistant. Answer the question using ONLY the numbered snippets provided. Cite the snippets you used inline, like [1] or [2]. If the snippets do not contain the answer, say so plainly instead of guessing.`

// Citation is one snippet handed to the model, numbered as it appears in
// the prompt.
type Citation struct {
	Ordinal    int
	SourcePath string
	ChunkIndex int
	Snippet    string
	Similarity float32
}

// Answer is a grounded completion plus the snippets it could cite.
type Answer struct {
	Text      string
	Citations []Citation
}

// Assembler wires retrieval and completion together.
type Assembler struct {
	embedder embedding.Embedder
	store    *vecstore.Store
	model    llm.Completer
	cfg      config.RAGConfig
}

func New(embedder embedding.Embedder, store *vecstore.Store, model llm.Completer, cfg config.RAGConfig) *Assembler {
	return &Assembler{embedder: embedder, store: store, model: model, cfg: cfg}
}

// Retrieve returns the chunks grounding a question: the nearest neighbors
// above the similarity floor, at most PerSourceCap per source file, at most
// k overall. k <= 0 uses the configured TopK.
func (a *Assembler) Retrieve(ctx context.Context, question string, k int) ([]Citation, error) {
	if k <= 0 {
		k = a.cfg.TopK
	}
	if a.store.Status().Entries == 0 {
		return nil, ErrInsufficient
	}

	vec, err := a.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	// Overfetch so the per-source cap cannot starve the result set.
	hits, err := a.store.Query(ctx, vec, k*2)
	if err != nil {
		return nil, err
	}

	perSource := make(map[string]int)
	var citations []Citation
	for _, h := range hits {
		if h.Similarity < a.cfg.MinSimilarity {
			break
		}
		if perSource[h.Entry.SourcePath] >= a.cfg.PerSourceCap {
			continue
		}
		perSource[h.Entry.SourcePath]++
		citations = append(citations, Citation{
			Ordinal:    len(citations) + 1,
			SourcePath: h.Entry.SourcePath,
			ChunkIndex: h.Entry.ChunkIndex,
			Snippet:    h.Entry.Snippet,
			Similarity: h.Similarity,
		})
		if len(citations) == k {
			break
		}
	}
	if len(citations) == 0 {
		return nil, ErrInsufficient
	}
	return citations, nil
}

// Answer retrieves grounding for the question and completes an answer over
// it. k <= 0 uses the configured TopK.
func (a *Assembler) Answer(ctx context.Context, question string, k int) (*Answer, error) {
	citations, err := a.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("snippets", len(citations)).Msg("grounding assembled")

	text, err := a.model.Complete(ctx, systemPrompt, buildPrompt(question, citations))
	if err != nil {
		return nil, err
	}
	return &Answer{Text: strings.TrimSpace(text), Citations: citations}, nil
}

func buildPrompt(question string, citations []Citation) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nSnippets:\n")
	for _, c := range citations {
		fmt.Fprintf(&b, "\n[%d] (from %s)\n%s\n", c.Ordinal, c.SourcePath, c.Snippet)
	}
	return b.String()
}
