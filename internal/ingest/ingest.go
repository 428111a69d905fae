// Package ingest builds the vector index: it walks the configured folders,
// extracts text from every supported document, chunks it, embeds the chunks,
// and atomically replaces the persisted store.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"localfind/internal/chunker"
	"localfind/internal/config"
	"localfind/internal/embedding"
	"localfind/internal/extract"
	"localfind/internal/vecstore"
)

// embedBatch bounds how many chunk texts go to the embedder per call.
const embedBatch = 32

// Stats summarizes one index build. Failures maps each file that could not
// be ingested to the reason; a failed file never aborts the build.
type Stats struct {
	FilesSeen    int
	FilesIndexed int
	Chunks       int
	Failures     map[string]string
	Duration     time.Duration
}

// Pipeline rebuilds the index for a fixed configuration. Only one rebuild
// runs at a time; queries keep serving the prior state until the swap.
type Pipeline struct {
	cfg      *config.Config
	embedder embedding.Embedder
	store    *vecstore.Store

	mu sync.Mutex
}

func New(cfg *config.Config, embedder embedding.Embedder, store *vecstore.Store) *Pipeline {
	return &Pipeline{cfg: cfg, embedder: embedder, store: store}
}

// Rebuild scans every configured folder and replaces the whole store with
// the result. It returns build statistics even when some files failed.
func (p *Pipeline) Rebuild(ctx context.Context) (*Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	stats := &Stats{Failures: make(map[string]string)}

	var (
		entries []vecstore.IndexEntry
		texts   []string
	)
	for _, root := range p.cfg.Folders {
		if err := p.walkRoot(ctx, root, stats, &entries, &texts); err != nil {
			return nil, err
		}
	}

	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	if err := p.store.Rebuild(entries, vectors); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	log.Info().
		Int("files", stats.FilesIndexed).
		Int("chunks", stats.Chunks).
		Int("failures", len(stats.Failures)).
		Dur("took", stats.Duration).
		Msg("index rebuilt")
	return stats, nil
}

// Status reports the persisted index state.
func (p *Pipeline) Status() vecstore.Status {
	return p.store.Status()
}

func (p *Pipeline) walkRoot(ctx context.Context, root string, stats *Stats, entries *[]vecstore.IndexEntry, texts *[]string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("skipping unreadable path")
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || p.denied(name)) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		if !extract.Supported(path) {
			return nil
		}

		stats.FilesSeen++
		info, err := d.Info()
		if err != nil {
			stats.Failures[path] = err.Error()
			return nil
		}
		text, err := extract.Text(path)
		if err != nil {
			stats.Failures[path] = err.Error()
			return nil
		}
		chunks := chunker.Split(path, text, p.cfg.Chunk.Size, p.cfg.Chunk.Overlap)
		if len(chunks) == 0 {
			return nil
		}

		for _, c := range chunks {
			*entries = append(*entries, vecstore.IndexEntry{
				SourcePath:  path,
				ChunkIndex:  c.Index,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
				Snippet:     c.Text,
				ModTime:     info.ModTime(),
			})
			*texts = append(*texts, c.Text)
		}
		stats.FilesIndexed++
		stats.Chunks += len(chunks)
		return nil
	})
}

func (p *Pipeline) denied(name string) bool {
	for _, d := range p.cfg.DenyDirs {
		if name == d {
			return true
		}
	}
	return false
}

func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embedBatch {
		end := min(i+embedBatch, len(texts))
		batch, err := p.embedder.EmbedTexts(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/embedBatch, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
